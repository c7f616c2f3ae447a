package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"

	"trawler-engine/internal/domain"
	"trawler-engine/internal/store"
)

type MatchesHandler struct {
	DB *sql.DB
}

// List serves GET /matches. ?run=latest narrows to the most recent run, a
// literal run id narrows to that run, absent means the whole archive.
// ?limit caps the page.
func (h MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run")
	if runID == "latest" {
		id, err := store.LatestRunID(r.Context(), h.DB)
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, codeDBError, err.Error())
			return
		}
		runID = id
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			WriteError(w, r, http.StatusBadRequest, codeBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	matches, err := store.ListMatches(r.Context(), h.DB, store.ListMatchesOpts{RunID: runID, Limit: limit})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, codeDBError, err.Error())
		return
	}
	if matches == nil {
		matches = []domain.Match{}
	}
	writeJSON(w, map[string]any{"run_id": runID, "matches": matches})
}
