package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit returns a per client IP limiter for a single route, e.g. "10-M"
// for ten requests a minute. Counters live in process memory.
func RateLimit(prefix, formatted string) (Middleware, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}

	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "rl:" + prefix,
		CleanUpInterval: time.Minute,
	})

	mw := stdlib.NewMiddleware(limiter.New(store, rate),
		stdlib.WithKeyGetter(func(r *http.Request) string {
			return matchedRoutePath(r) + "|" + r.RemoteAddr
		}),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			if reset, err := strconv.ParseInt(w.Header().Get("X-RateLimit-Reset"), 10, 64); err == nil {
				if wait := time.Until(time.Unix(reset, 0)); wait > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
				}
			}
			writeJSON(w, errorResponse{Message: "Too many requests, please slow down"}, http.StatusTooManyRequests)
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, _ error) {
			writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		}),
	)

	return mw.Handler, nil
}
