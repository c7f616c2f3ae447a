package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"trawler-engine/internal/config"
)

// KeyringService groups the engine's secrets in the OS keychain.
const KeyringService = "trawler"

func apiAccount(sourceID, field string) string {
	return fmt.Sprintf("trawler:api:%s:%s", sourceID, field)
}

// LookupAPICredentials returns keychain-held credentials for a board. Config
// file values take precedence at the call sites; this is the fallback.
func LookupAPICredentials(sourceID string) (config.Credentials, bool) {
	var creds config.Credentials
	if id, err := keyring.Get(KeyringService, apiAccount(sourceID, "id")); err == nil {
		creds.ID = strings.TrimSpace(id)
	}
	if key, err := keyring.Get(KeyringService, apiAccount(sourceID, "key")); err == nil {
		creds.Key = strings.TrimSpace(key)
	}
	return creds, creds.Key != ""
}

func SetAPICredentials(sourceID string, creds config.Credentials) error {
	if strings.TrimSpace(sourceID) == "" {
		return errors.New("source id is empty")
	}
	if strings.TrimSpace(creds.Key) == "" {
		return errors.New("credential key is empty")
	}
	if creds.ID != "" {
		if err := keyring.Set(KeyringService, apiAccount(sourceID, "id"), creds.ID); err != nil {
			return err
		}
	}
	return keyring.Set(KeyringService, apiAccount(sourceID, "key"), creds.Key)
}

func DeleteAPICredentials(sourceID string) error {
	_ = keyring.Delete(KeyringService, apiAccount(sourceID, "id"))
	return keyring.Delete(KeyringService, apiAccount(sourceID, "key"))
}

// ResolveCredentials merges file-borne credentials with the keychain.
func ResolveCredentials(sourceID string, fromFile config.Credentials) config.Credentials {
	if fromFile.Key != "" {
		return fromFile
	}
	if creds, ok := LookupAPICredentials(sourceID); ok {
		if creds.ID == "" {
			creds.ID = fromFile.ID
		}
		return creds
	}
	return fromFile
}

func IMAPAccount(cfg config.EmailConfig) string {
	return fmt.Sprintf("trawler:imap:%s@%s", cfg.Username, cfg.IMAPHost)
}

func GetIMAPPassword(account string) (string, error) {
	if strings.TrimSpace(account) != "" {
		pw, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	return "", errors.New("IMAP password not found in keychain")
}

func SetIMAPPassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}
