package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
)

type componentStatus struct {
	OK       bool   `json:"ok"`
	Critical bool   `json:"critical"`
	Mode     string `json:"mode,omitempty"`
	Error    string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports every probe. Status is "critical" when a critical probe fails,
// "degraded" when only optional ones do, "ok" otherwise.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := make(map[string]componentStatus, len(d.Probes))
		for _, p := range d.Probes {
			st := componentStatus{OK: true, Critical: p.Critical, Mode: p.Mode}
			if err := ping(r.Context(), p); err != nil {
				st.OK = false
				st.Error = err.Error()
			}
			components[p.Name] = st
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

func overallStatus(components map[string]componentStatus) string {
	status := "ok"
	for _, c := range components {
		if c.OK {
			continue
		}
		if c.Critical {
			return "critical"
		}
		status = "degraded"
	}
	return status
}
