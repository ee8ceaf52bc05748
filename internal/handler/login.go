package handler

import (
	"crypto/subtle"
	"net/http"

	"binwatch/internal/config"
	"binwatch/internal/logger"
	"binwatch/internal/middleware"
	"binwatch/internal/service/auth"
)

// LoginHandler handles POST /auth/login by validating password and issuing a signed session cookie.
func LoginHandler(config *config.Config, sessions *auth.SessionService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		password := r.FormValue("password")
		if subtle.ConstantTimeCompare([]byte(password), []byte(config.Password)) != 1 {
			logger.Warning("Failed login attempt from %s", r.RemoteAddr)
			http.Error(w, "Invalid password", http.StatusUnauthorized)
			return
		}

		token, expires, err := sessions.Issue()
		if err != nil {
			logger.Error("Error issuing session: %v", err)
			http.Error(w, "Login failed", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.AuthCookie,
			Value:    token,
			Path:     "/",
			Expires:  expires,
			MaxAge:   int(sessions.TTL().Seconds()),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

// LogoutHandler revokes the current session and clears the cookie.
func LogoutHandler(sessions *auth.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(middleware.AuthCookie); err == nil {
			sessions.Revoke(cookie.Value)
		}
		http.SetCookie(w, &http.Cookie{
			Name:   middleware.AuthCookie,
			Value:  "",
			Path:   "/",
			MaxAge: -1, // deletes the cookie
		})
		w.WriteHeader(http.StatusNoContent)
	}
}
