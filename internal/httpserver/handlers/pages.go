package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/live"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/render"
)

// Home is the public sign-in page.
func Home(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page(w, d, http.StatusOK, render.PageHome, render.HomeData{})
	}
}

// Dashboard shows the create form, the bookmark list and the user nav.
func Dashboard(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dashboard(w, r, d, http.StatusOK, live.FormState{})
	}
}

// dashboard renders the page with a fresh list read and the given form state.
func dashboard(w http.ResponseWriter, r *http.Request, d deps.Deps, status int, form live.FormState) {
	id, _ := auth.FromContext(r.Context())

	items, err := d.Bookmarks.List(r.Context(), id.ID)
	if err != nil {
		d.Logger.Error("failed to list bookmarks",
			logger.String("user_id", id.ID),
			logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page(w, d, status, render.PageDashboard, render.DashboardData{
		Identity: id,
		List:     render.ListData{Items: items},
		Form:     form,
	})
}

func page(w http.ResponseWriter, d deps.Deps, status int, name string, data any) {
	if err := d.Renderer.Page(w, status, name, data); err != nil {
		d.Logger.Error("failed to render page",
			logger.String("page", name),
			logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
