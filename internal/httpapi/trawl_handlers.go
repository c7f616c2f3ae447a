package httpapi

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"

	"trawler-engine/internal/config"
	"trawler-engine/internal/profile"
	"trawler-engine/internal/trawl"
)

type TrawlHandler struct {
	CfgVal      *atomic.Value // config.Config
	Trawler     *trawl.Trawler
	LoadProfile func() (profile.Profile, error)
}

func (h TrawlHandler) Progress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Trawler.Progress.Snapshot())
}

// Run kicks off a sweep in the background and returns immediately; the caller
// follows along via /trawl/progress or /events. The run slot is claimed before
// we reply, so of two racing POSTs exactly one gets ok and the other a 409.
func (h TrawlHandler) Run(w http.ResponseWriter, r *http.Request) {
	prof, err := h.LoadProfile()
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, codeProfileError, err.Error())
		return
	}
	cfg := h.CfgVal.Load().(config.Config)

	if err := h.Trawler.RunAsync(context.Background(), cfg, prof); err != nil {
		WriteError(w, r, http.StatusConflict, codeAlreadyRunning, "a trawl is already running")
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

// TestSource handles POST /sources/{id}/test: one diagnostic fetch, no side
// effects on stores or progress.
func (h TrawlHandler) TestSource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/sources/")
	id := strings.TrimSuffix(rest, "/test")
	if id == "" || id == rest {
		WriteError(w, r, http.StatusNotFound, codeNotFound, "expected /sources/{id}/test")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	res, err := h.Trawler.TestSource(r.Context(), cfg, id, r.URL.Query().Get("term"))
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, codeProbeError, err.Error())
		return
	}
	writeJSON(w, res)
}

func (h TrawlHandler) Sources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"sources": h.Trawler.Registry.IDs()})
}
