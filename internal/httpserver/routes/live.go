package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/mw"
)

// Long-lived: no request timeout.
func init() { Register(Group{Name: "live", Register: registerLive, Streaming: true}) }

func registerLive(r chi.Router, d deps.Deps) {
	r.With(
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.RequireIdentity(d.Sessions, d.Logger),
	).Get("/live", handlers.Live(d))
}
