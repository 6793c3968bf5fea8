package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/live"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

// maxFormBody bounds the create form body.
const maxFormBody = 16 << 10

// CreateBookmark is the form POST used when the live connection is not available.
// It goes through the same Form as a live session: one write per submission,
// inline error on failure.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())

		r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		form := live.NewForm()
		form.Submit(r.Context(), d.Bookmarks, id.ID, r.PostForm.Get("url"), r.PostForm.Get("title"))

		if st := form.Snapshot(); st.Error != "" {
			dashboard(w, r, d, http.StatusUnprocessableEntity, st)
			return
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}
}

// DeleteBookmark removes one of the caller's bookmarks. Failures are logged only.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())
		bookmarkID := chi.URLParam(r, "id")

		if err := d.Bookmarks.Delete(r.Context(), id.ID, bookmarkID); err != nil {
			d.Logger.Error("failed to delete bookmark",
				logger.String("bookmark_id", bookmarkID),
				logger.String("user_id", id.ID),
				logger.Error(err))
		}
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}
}

type exportItem struct {
	Title     string `yaml:"title"`
	URL       string `yaml:"url"`
	CreatedAt string `yaml:"created_at"`
}

type exportDoc struct {
	Bookmarks []exportItem `yaml:"bookmarks"`
}

// ExportBookmarks downloads the caller's bookmarks as YAML, newest first.
func ExportBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())

		items, err := d.Bookmarks.List(r.Context(), id.ID)
		if err != nil {
			d.Logger.Error("failed to list bookmarks for export",
				logger.String("user_id", id.ID),
				logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		doc := exportDoc{Bookmarks: make([]exportItem, 0, len(items))}
		for _, b := range items {
			doc.Bookmarks = append(doc.Bookmarks, exportItem{
				Title:     b.Title,
				URL:       b.URL,
				CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
			})
		}

		out, err := yaml.Marshal(doc)
		if err != nil {
			d.Logger.Error("failed to encode export", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		now := time.Now
		if d.TimeNow != nil {
			now = d.TimeNow
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="bookmarks-%s.yaml"`, now().UTC().Format("2006-01-02")))
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(out)
	}
}
