package gateway

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenStore persists device-trust tokens, one flat file per account, so a
// restart can log on without a fresh guard challenge.
type TokenStore struct {
	dir string
}

func NewTokenStore(dir string) *TokenStore {
	return &TokenStore{dir: dir}
}

// Load returns the stored token for the account, or "" if none exists.
func (s *TokenStore) Load(account string) (string, error) {
	data, err := os.ReadFile(s.path(account))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read trust token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token for the account, creating the directory if needed.
func (s *TokenStore) Save(account, token string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path(account), []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write trust token: %w", err)
	}
	return nil
}

func (s *TokenStore) path(account string) string {
	// Account names come from config, but keep the filename flat regardless.
	name := strings.ReplaceAll(account, string(os.PathSeparator), "_")
	return filepath.Join(s.dir, name+".token")
}
