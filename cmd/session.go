package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/s0up4200/moviemanager/tmdb"
)

// sessionFile persists the login between invocations
type sessionFile struct {
	path string
}

// storedSession is the on-disk layout of the session file
type storedSession struct {
	AccountID int    `json:"account_id"`
	SessionID string `json:"session_id"`
	Username  string `json:"username,omitempty"`
}

// Load returns the saved credentials. A missing file yields empty
// credentials.
func (s sessionFile) Load() (tmdb.Credentials, string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return tmdb.Credentials{}, "", nil
	}
	if err != nil {
		return tmdb.Credentials{}, "", fmt.Errorf("failed to read session file: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return tmdb.Credentials{}, "", fmt.Errorf("failed to parse session file %s: %w", s.path, err)
	}

	return tmdb.Credentials{AccountID: stored.AccountID, SessionID: stored.SessionID}, stored.Username, nil
}

// Save writes the session id and account id, readable by the owner only
func (s sessionFile) Save(creds tmdb.Credentials, username string) error {
	if !creds.HasSession() {
		return fmt.Errorf("refusing to save credentials without a session")
	}

	data, err := json.MarshalIndent(storedSession{
		AccountID: creds.AccountID,
		SessionID: creds.SessionID,
		Username:  username,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Delete removes the session file if present
func (s sessionFile) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
