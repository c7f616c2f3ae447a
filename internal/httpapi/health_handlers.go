package httpapi

import (
	"net/http"

	"trawler-engine/internal/trawl"
)

type HealthHandler struct {
	Trawler *trawl.Trawler
}

// Health reports liveness plus whether a sweep is in flight, so the UI can
// grey out its run button without a second round trip to /trawl/progress.
func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"ok":       true,
		"trawling": h.Trawler != nil && h.Trawler.Running(),
	})
}
