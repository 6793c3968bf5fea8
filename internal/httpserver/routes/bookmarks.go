package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/mw"
)

func init() { Register(Group{Name: "bookmarks", Register: registerBookmarks}) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	signedIn := r.With(
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.RequireIdentity(d.Sessions, d.Logger),
	)

	mutations := signedIn.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateBurst,
		RefillPerIPPerMin: d.RatePerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	}))
	mutations.Post("/bookmarks", handlers.CreateBookmark(d))
	mutations.Post("/bookmarks/{id}/delete", handlers.DeleteBookmark(d))

	signedIn.Get("/bookmarks/export", handlers.ExportBookmarks(d))
}
