package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://currex.kro.kr", cfg.APIBaseURL)
	assert.Equal(t, "https://api.exchangerate-api.com", cfg.RatesBaseURL)
	assert.Equal(t, 8421, cfg.LoginCallbackPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CURREX_API_BASE_URL", "http://localhost:3000")
	t.Setenv("CURREX_CHAT_WS_URL", "ws://localhost:3001")
	t.Setenv("CURREX_LOGIN_PORT", "9001")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.APIBaseURL)
	assert.Equal(t, "ws://localhost:3001", cfg.ChatURL())
	assert.Equal(t, 9001, cfg.LoginCallbackPort)
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("CURREX_LOGIN_PORT", "99999")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login callback port")
}

func TestChatURLDerivedFromAPIBase(t *testing.T) {
	cfg := &Config{APIBaseURL: "https://currex.kro.kr/"}
	assert.Equal(t, "https://currex.kro.kr/socket", cfg.ChatURL())
}

func TestSessionFileOverride(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "session.json")

	cfg := &Config{SnapshotPath: want}
	got, err := cfg.SessionFile()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
