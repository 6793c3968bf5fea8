package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/backend"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/render"
)

// Probe is a dependency checked by /readyz and reported by /infra.
type Probe struct {
	Name     string
	Critical bool   // false => failure degrades the service instead of making it unready
	Mode     string // free-form, e.g. "redis" or "in-process"
	Ping     func(ctx context.Context) error
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to access healthz/readyz/infra endpoints
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)

	Bookmarks *backend.Client  // table + change feed
	Sessions  *auth.Sessions   // session cookies and revocation
	Provider  auth.Provider    // OAuth identity provider
	Renderer  *render.Renderer // pages and fragments
	Probes    []Probe          // readiness checks

	LivePingInterval time.Duration // websocket keepalive
	RateBurst        int           // mutation burst per client
	RatePerMin       int           // mutation refill per client per minute
}
