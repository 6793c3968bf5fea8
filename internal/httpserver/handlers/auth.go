package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/render"
)

const authErrorPath = "/auth/error"

// SignIn starts the OAuth flow, with the callback derived from the request origin.
func SignIn(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := d.Sessions.NewState(w)
		target := d.Provider.AuthCodeURL(state, auth.CallbackURL(r))
		if target == "" {
			d.Logger.Error("identity provider returned no sign-in url")
			http.Redirect(w, r, authErrorPath, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// Callback finishes the OAuth flow and opens a session.
func Callback(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fail := func(reason string, err error) {
			d.Logger.Warn("sign-in failed",
				logger.String("reason", reason),
				logger.Error(err))
			http.Redirect(w, r, authErrorPath, http.StatusSeeOther)
		}

		if err := d.Sessions.CheckState(w, r); err != nil {
			fail("state", err)
			return
		}

		q := r.URL.Query()
		if e := q.Get("error"); e != "" {
			fail("provider", errors.New(e))
			return
		}
		code := q.Get("code")
		if code == "" {
			fail("code", errors.New("missing code"))
			return
		}

		id, err := d.Provider.Identify(r.Context(), code, auth.CallbackURL(r))
		if err != nil {
			fail("exchange", err)
			return
		}

		if _, err := d.Sessions.Issue(w, id); err != nil {
			fail("session", err)
			return
		}

		d.Logger.Info("user signed in", logger.String("user_id", id.ID))
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}
}

// AuthError is where every failed sign-in lands.
func AuthError(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page(w, d, http.StatusOK, render.PageAuthError, render.ErrorData{
			Title:   "Authentication Error",
			Message: "Something went wrong during sign in. Please try again.",
		})
	}
}

// SignOut revokes the current session, if any, and returns to the sign-in page.
func SignOut(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if claims, err := d.Sessions.Resolve(r); err == nil {
			if err := d.Sessions.Revoke(r.Context(), claims); err != nil {
				d.Logger.Error("failed to revoke session",
					logger.String("user_id", claims.Subject),
					logger.Error(err))
			}
		}
		d.Sessions.Clear(w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
