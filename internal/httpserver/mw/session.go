package mw

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

// RequireIdentity lets only signed-in requests through and stores their
// session in the request context. Everyone else is sent to the sign-in page.
func RequireIdentity(sessions *auth.Sessions, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessions.Resolve(r)
			if err != nil {
				switch {
				case errors.Is(err, auth.ErrRevoked):
					sessions.Clear(w)
				case errors.Is(err, auth.ErrNoSession):
					if _, cerr := r.Cookie(auth.SessionCookie); cerr == nil {
						sessions.Clear(w)
					}
				default:
					log.Error("failed to resolve session", logger.Error(err))
				}
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// RedirectIfSignedIn sends requests that already carry a valid session to target.
func RedirectIfSignedIn(sessions *auth.Sessions, target string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := sessions.Resolve(r); err == nil {
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
