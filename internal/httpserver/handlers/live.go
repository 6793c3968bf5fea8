package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/live"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
)

// Live upgrades to a websocket and serves a live session until either side goes away.
// Origin is checked against Host by the upgrader.
func Live(d deps.Deps) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.FromContext(r.Context())

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// the upgrader already replied
			d.Logger.Debug("websocket upgrade failed", logger.Error(err))
			return
		}

		d.Logger.Debug("live session opened", logger.String("user_id", id.ID))
		s := live.NewSession(conn, d.Bookmarks, d.Renderer, id, d.Logger, d.LivePingInterval)
		if err := s.Run(r.Context()); err != nil {
			d.Logger.Warn("live session ended with error",
				logger.String("user_id", id.ID),
				logger.Error(err))
			return
		}
		d.Logger.Debug("live session closed", logger.String("user_id", id.ID))
	}
}
