package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

// requestTimeout bounds every non-streaming request.
const requestTimeout = 10 * time.Second

// Group is a set of routes registered together from an init function.
type Group struct {
	Name     string
	Register Registrar
	// Streaming groups hold the connection open (websockets) and skip the
	// request timeout.
	Streaming   bool
	Middlewares []Middleware
}

var registry []Group

// Register queues a group for RegisterAll.
func Register(g Group) {
	registry = append(registry, g)
}

// RegisterAll mounts every queued group. Called once from httpserver.NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, g := range registry {
		mws := g.Middlewares
		if !g.Streaming {
			mws = append([]Middleware{middleware.Timeout(requestTimeout)}, mws...)
		}

		if len(mws) == 0 {
			g.Register(r, d)
		} else {
			g.Register(r.With(mws...), d)
		}

		if d.Logger != nil {
			d.Logger.Debug("routes registered",
				logger.String("group", g.Name),
				logger.Bool("streaming", g.Streaming))
		}
	}
}
