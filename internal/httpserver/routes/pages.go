package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/mw"
	"github.com/MrSnakeDoc/smartmark/internal/render"
)

func init() { Register(Group{Name: "pages", Register: registerPages}) }

func registerPages(r chi.Router, d deps.Deps) {
	app := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))

	app.With(mw.RedirectIfSignedIn(d.Sessions, "/dashboard")).Get("/", handlers.Home(d))
	app.With(mw.RequireIdentity(d.Sessions, d.Logger)).Get("/dashboard", handlers.Dashboard(d))
	app.Handle("/static/*", http.StripPrefix("/static/", render.Static()))
}
