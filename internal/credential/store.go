// Package credential keeps the Twitch OAuth token in the system keyring so
// it does not have to live in the config file.
//
//   - macOS: Keychain
//   - Windows: Credential Manager
//   - Linux: Secret Service (GNOME Keyring, KWallet)
package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// ServiceName is the keyring service all tokens are stored under.
const ServiceName = "twitchplays"

// Errors returned by the store.
var (
	ErrNotFound     = errors.New("credential not found")
	ErrEmptyAccount = errors.New("account name cannot be empty")
	ErrEmptyToken   = errors.New("token cannot be empty")
)

// Store reads and writes tokens by Twitch account name.
type Store interface {
	Get(username string) (string, error)
	Set(username, token string) error
	Delete(username string) error
}

// KeyringStore implements Store on the system keyring.
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a keyring-backed store.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: ServiceName}
}

// Account returns the keyring account name for a Twitch user.
func Account(username string) string {
	return "twitch:" + strings.ToLower(strings.TrimSpace(username))
}

// Get returns the token stored for username.
func (s *KeyringStore) Get(username string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", ErrEmptyAccount
	}

	token, err := keyring.Get(s.service, Account(username))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, Account(username))
		}
		return "", fmt.Errorf("failed to retrieve token: %w", err)
	}
	return token, nil
}

// Set stores token for username, replacing any existing one.
func (s *KeyringStore) Set(username, token string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyAccount
	}
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}

	if err := keyring.Set(s.service, Account(username), NormalizeToken(token)); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Delete removes the token stored for username.
func (s *KeyringStore) Delete(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyAccount
	}

	if err := keyring.Delete(s.service, Account(username)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, Account(username))
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// NormalizeToken trims whitespace and adds the "oauth:" prefix IRC expects.
func NormalizeToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" || strings.HasPrefix(token, "oauth:") {
		return token
	}
	return "oauth:" + token
}
