package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
)

const probeTimeout = 2 * time.Second

type readyzResponse struct {
	Ready  bool     `json:"ready"`
	Failed []string `json:"failed,omitempty"`
}

// Readyz is 200 when every critical probe answers, 503 otherwise.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var failed []string
		for _, p := range d.Probes {
			if !p.Critical {
				continue
			}
			if err := ping(r.Context(), p); err != nil {
				failed = append(failed, p.Name)
			}
		}

		status := http.StatusOK
		if len(failed) > 0 {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyzResponse{Ready: len(failed) == 0, Failed: failed})
	}
}

func ping(ctx context.Context, p deps.Probe) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return p.Ping(ctx)
}
