package httpapi

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in the APIError envelope. The UI switches on these, so
// they are stable strings, not free text.
const (
	codeAlreadyRunning    = "already_running"
	codeProfileError      = "profile_error"
	codeProbeError        = "probe_error"
	codeNotFound          = "not_found"
	codeBadRequest        = "bad_request"
	codeKeyringError      = "keyring_error"
	codeDBError           = "db_error"
	codeInternal          = "internal_error"
	codeStreamUnsupported = "stream_unsupported"
)

// APIError is the envelope every non-2xx JSON response uses. The request id is
// echoed back so a UI-side error report can be matched to the access log line.
type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the APIError envelope for one failed trawl-engine request.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}
