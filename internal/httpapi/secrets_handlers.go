package httpapi

import (
	"net/http"
	"sync/atomic"

	"trawler-engine/internal/config"
	"trawler-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setSourceCredentialsReq struct {
	SourceID string `json:"source_id"`
	ID       string `json:"id"`
	Key      string `json:"key"`
}

// SetSourceCredentials stores a board's API credentials in the OS keychain so
// they never land in the config file.
func (h SecretsHandler) SetSourceCredentials(w http.ResponseWriter, r *http.Request) {
	var req setSourceCredentialsReq
	if !readJSON(w, r, &req) {
		return
	}

	creds := config.Credentials{ID: req.ID, Key: req.Key}
	if err := secrets.SetAPICredentials(req.SourceID, creds); err != nil {
		WriteError(w, r, http.StatusBadRequest, codeKeyringError, "failed to store credentials: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setIMAPPasswordReq struct {
	Password string `json:"password"`
}

func (h SecretsHandler) SetIMAPPassword(w http.ResponseWriter, r *http.Request) {
	var req setIMAPPasswordReq
	if !readJSON(w, r, &req) {
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.SetIMAPPassword(secrets.IMAPAccount(cfg.Email), req.Password); err != nil {
		WriteError(w, r, http.StatusBadRequest, codeKeyringError, "failed to store password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
