package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/yogapass/internal/pkg/config"
	"github.com/shandysiswandi/yogapass/internal/pkg/goerror"
	"github.com/shandysiswandi/yogapass/internal/pkg/instrument"
	"github.com/shandysiswandi/yogapass/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJWT struct{}

func (stubJWT) Generate(jwt.Subject) (string, time.Time, error) { return "", time.Time{}, nil }

func (stubJWT) Verify(token string) (jwt.Claims, error) {
	switch token {
	case "good":
	case "old":
		return jwt.Claims{}, jwt.ErrTokenExpired
	default:
		return jwt.Claims{}, jwt.ErrInvalidToken
	}
	var c jwt.Claims
	c.Subject = "identity-1"
	c.ProfileID = 7
	return c, nil
}

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func newTestRouter(t *testing.T, yaml string) *Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	return NewRouter(Config{
		Config:     cfg,
		UUID:       fixedID("cid-generated"),
		JWT:        stubJWT{},
		Instrument: instrument.NewNoop(),
	})
}

type envelope struct {
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestRouter_HealthAndCorrelationID(t *testing.T) {
	ro := newTestRouter(t, "app: {}")

	rec, env := do(t, ro, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
	assert.Equal(t, "cid-generated", rec.Header().Get(HeaderCorrelationID))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, "from-proxy")
	rec, _ = do(t, ro, req)
	assert.Equal(t, "from-proxy", rec.Header().Get(HeaderCorrelationID))
}

func TestRouter_NotFound(t *testing.T) {
	ro := newTestRouter(t, "app: {}")

	rec, env := do(t, ro, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "endpoint not found", env.Message)
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	ro := newTestRouter(t, "app: {}")
	ro.POST("/api/v1/auth/otp/request", func(*Request) (any, error) {
		return nil, goerror.NewBusinessWithFields("wait a bit", goerror.CodeTooManyRequest, "retry_after_seconds", "42")
	})
	ro.POST("/api/v1/auth/otp/confirm", func(*Request) (any, error) {
		return nil, errors.New("raw failure")
	})

	rec, env := do(t, ro, httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp/request", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "wait a bit", env.Message)
	assert.Equal(t, map[string]string{"retry_after_seconds": "42"}, env.Error)
	assert.Equal(t, "42", rec.Header().Get("Retry-After"))

	rec, env = do(t, ro, httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp/confirm", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", env.Message)
}

func TestRouter_Authentication(t *testing.T) {
	ro := newTestRouter(t, "app: {}")
	ro.GET("/api/v1/auth/me", func(r *Request) (any, error) {
		return map[string]any{"identity": jwt.GetAuth(r.Context()).IdentityID()}, nil
	})

	rec, env := do(t, ro, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", env.Message)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec, env = do(t, ro, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid access token", env.Message)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer old")
	rec, env = do(t, ro, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token expired", env.Message)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "expired")

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "bearer good")
	rec, env = do(t, ro, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"identity":"identity-1"}`, string(env.Data))
}

func TestRouter_Maintenance(t *testing.T) {
	ro := newTestRouter(t, "app:\n  maintenance:\n    endpoints: /api/v1/auth/otp/request\n")
	ro.POST("/api/v1/auth/otp/request", func(*Request) (any, error) { return map[string]bool{"success": true}, nil })

	rec, env := do(t, ro, httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp/request", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "service is under maintenance", env.Message)

	rec, _ = do(t, ro, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Recoverer(t *testing.T) {
	ro := newTestRouter(t, "app: {}")
	ro.POST("/api/v1/auth/refresh", func(*Request) (any, error) { panic("boom") })

	rec, env := do(t, ro, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", env.Message)
}

func TestRouter_RateLimit(t *testing.T) {
	ro := newTestRouter(t, "app: {}")
	rl, err := RateLimit("test", "2-M")
	require.NoError(t, err)
	ro.POST("/api/v1/auth/otp/request", func(*Request) (any, error) { return map[string]bool{"success": true}, nil }, rl)

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/otp/request", nil)
		req.Header.Set("X-Real-IP", ip)
		rec, _ := do(t, ro, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("203.0.113.7"))
	assert.Equal(t, http.StatusOK, call("203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, call("203.0.113.7"))
	assert.Equal(t, http.StatusOK, call("198.51.100.1"))

	_, err = RateLimit("bad", "lots")
	assert.Error(t, err)
}

func TestRequest_DecodeBody(t *testing.T) {
	type body struct {
		Phone string `json:"phone"`
	}

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "ok", payload: `{"phone":"01012345678"}`},
		{name: "unknown field", payload: `{"phone":"1","x":1}`, wantErr: true},
		{name: "trailing data", payload: `{"phone":"1"}{}`, wantErr: true},
		{name: "not json", payload: `phone=1`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))}
			var b body
			err := r.DecodeBody(&b)
			if tt.wantErr {
				assert.True(t, goerror.HasCode(err, goerror.CodeInvalidFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "01012345678", b.Phone)
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.9, 10.0.0.1")
	assert.Equal(t, "198.51.100.9", clientIP(req))

	req.Header.Set("X-Real-IP", "not-an-ip")
	assert.Equal(t, "198.51.100.9", clientIP(req))
}
