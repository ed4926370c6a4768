package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

const (
	keychainService = "callhighlights"
	tokenAccount    = "api_token"
	tokenEnv        = "CALLHL_API_TOKEN"
)

// TokenStore persists the local API bearer token.
type TokenStore interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
}

// Keychain is the platform secret store: macOS Keychain on darwin and a
// 0600 secrets.json under $XDG_DATA_HOME elsewhere.
type Keychain struct{}

func NewKeychain() Keychain {
	return Keychain{}
}

func (Keychain) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (Keychain) Set(service, account, value string) error {
	return keychainSet(service, account, value)
}

// GetAPIToken returns the bearer token guarding /api. CALLHL_API_TOKEN wins;
// otherwise the stored token is used, and on first use a random one is
// generated and saved.
func GetAPIToken(ts TokenStore) (string, error) {
	if tok := os.Getenv(tokenEnv); tok != "" {
		return tok, nil
	}
	if tok, err := ts.Get(keychainService, tokenAccount); err == nil && tok != "" {
		return tok, nil
	}

	tok := uuid.NewString()
	if err := ts.Set(keychainService, tokenAccount, tok); err != nil {
		return "", fmt.Errorf("storing API token: %w", err)
	}
	return tok, nil
}
