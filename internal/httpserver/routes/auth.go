package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/mw"
)

func init() { Register(Group{Name: "auth", Register: registerAuth}) }

func registerAuth(r chi.Router, d deps.Deps) {
	app := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))

	limited := app.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateBurst,
		RefillPerIPPerMin: d.RatePerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	}))
	limited.Post("/auth/signin", handlers.SignIn(d))
	limited.Get("/auth/callback", handlers.Callback(d))

	app.Get("/auth/error", handlers.AuthError(d))
	app.Post("/auth/signout", handlers.SignOut(d))
}
