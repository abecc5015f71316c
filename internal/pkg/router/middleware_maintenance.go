package router

import (
	"net/http"
	"slices"

	"github.com/shandysiswandi/yogapass/internal/pkg/config"
)

// middlewareMaintenance answers 503 for route patterns listed in
// app.maintenance.endpoints ("*" blocks everything but /health). The list is
// read per request so a config file reload takes effect without a restart.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg == nil {
				next.ServeHTTP(w, r)
				return
			}

			route := matchedRoutePath(r)
			blocked := cfg.GetArray("app.maintenance.endpoints")
			if slices.Contains(blocked, route) || (route != "/health" && slices.Contains(blocked, "*")) {
				w.Header().Set("Retry-After", "120")
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
