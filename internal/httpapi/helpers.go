package httpapi

import (
	"encoding/json"
	"net/http"
)

// writeJSON is the happy-path counterpart of WriteJSON: status 200 implied,
// content type set so the UI's fetch wrapper does not have to sniff.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// readJSON decodes a request body into dst and writes the 400 itself on bad
// input. A false return means the handler should stop.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, r, http.StatusBadRequest, codeBadRequest, "invalid json: "+err.Error())
		return false
	}
	return true
}

// methodMux dispatches one route by HTTP method; anything unlisted is a 405.
func methodMux(m map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := m[r.Method]; ok {
			h(w, r)
			return
		}
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
