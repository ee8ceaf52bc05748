package middleware

import (
	"net/http"
	"strings"
)

// AuthCookie carries the session token issued by the login handler.
const AuthCookie = "binwatch_session"

// SessionVerifier validates session tokens.
type SessionVerifier interface {
	Verify(token string) error
}

// AuthMiddleware checks that the client holds a valid session token.
func AuthMiddleware(sessions SessionVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		// Login, health checks and the metrics scrape stay reachable without a session
		if r.URL.Path == "/auth/login" ||
			r.URL.Path == "/healthz" ||
			r.URL.Path == "/metrics" ||
			strings.HasPrefix(r.URL.Path, "/static/") {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(AuthCookie)
		if err != nil || sessions.Verify(cookie.Value) != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
