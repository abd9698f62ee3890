package session

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// snapshot is the on-disk session state. It carries only what the login
// callback delivered; the refresh cookie stays with the HTTP cookie jar.
type snapshot struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
}

func (s *Session) saveSnapshot() {
	s.mu.RLock()
	path := s.snapshotPath
	snap := snapshot{AccessToken: s.token, UserID: s.userID}
	s.mu.RUnlock()

	if path == "" {
		return
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		s.logf("session snapshot dir", err)
		return
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		s.logf("session snapshot write", err)
	}
}

// Restore loads a previously saved snapshot, if one exists. Returns true
// when a token was restored.
func (s *Session) Restore() bool {
	s.mu.RLock()
	path := s.snapshotPath
	s.mu.RUnlock()

	if path == "" {
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil || snap.AccessToken == "" {
		return false
	}

	s.mu.Lock()
	s.token = snap.AccessToken
	s.userID = snap.UserID
	s.expiredFired = false
	if claims := parseClaims(snap.AccessToken); claims != nil {
		s.expiresAt = claims.expiresAt
	}
	s.mu.Unlock()
	return true
}

func removeSnapshot(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Default().Warn("session snapshot remove", slog.String("error", err.Error()))
	}
}

func (s *Session) logf(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, slog.String("error", err.Error()))
	}
}
