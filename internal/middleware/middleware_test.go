package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binwatch/internal/metrics"
	"binwatch/internal/service/auth"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthMiddleware(t *testing.T) {
	sessions := auth.NewSessionService("secret", time.Hour)
	h := AuthMiddleware(sessions, okHandler)

	valid, _, err := sessions.Issue()
	require.NoError(t, err)
	revoked, _, err := sessions.Issue()
	require.NoError(t, err)
	sessions.Revoke(revoked)
	foreign, _, err := auth.NewSessionService("guessed", time.Hour).Issue()
	require.NoError(t, err)

	tests := []struct {
		path   string
		cookie string
		want   int
	}{
		{"/api/classifications", "", http.StatusUnauthorized},
		{"/api/classifications", "true", http.StatusUnauthorized},
		{"/api/classifications", valid, http.StatusOK},
		{"/api/classifications", revoked, http.StatusUnauthorized},
		{"/api/classifications", foreign, http.StatusUnauthorized},
		{"/api/alerts", "", http.StatusUnauthorized},
		{"/auth/login", "", http.StatusOK},
		{"/healthz", "", http.StatusOK},
		{"/metrics", "", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.cookie != "" {
			req.AddCookie(&http.Cookie{Name: AuthCookie, Value: tt.cookie})
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, "%s cookie=%q", tt.path, tt.cookie)
	}
}

func TestAuthMiddleware_HandSetCookieCannotClear(t *testing.T) {
	cleared := false
	h := AuthMiddleware(auth.NewSessionService("secret", time.Hour), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cleared = true
	}))

	for _, name := range []string{AuthCookie, "authenticated"} {
		req := httptest.NewRequest(http.MethodPost, "/api/classifications/clear", nil)
		req.AddCookie(&http.Cookie{Name: name, Value: "true"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
	assert.False(t, cleared)
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	mux := http.NewServeMux()
	mux.HandleFunc("/api/classifications/view", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	h := MetricsMiddleware(m, mux)

	for i := 0; i < 2; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/classifications/view?id=9", nil))
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/classifications/view", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}
