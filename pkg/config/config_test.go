package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseURL  string        `env:"TEST_BASE_URL" envDefault:"https://example.com"`
	Port     int           `env:"TEST_PORT" envDefault:"8080"`
	Timeout  time.Duration `env:"TEST_TIMEOUT" envDefault:"30s"`
	Verbose  bool          `env:"TEST_VERBOSE" envDefault:"false"`
	Partners []string      `env:"TEST_PARTNERS" envDefault:"google,kakao" envSeparator:","`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "https://example.com", cfg.BaseURL)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, []string{"google", "kakao"}, cfg.Partners)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("TEST_BASE_URL", "http://localhost:5000")
	t.Setenv("TEST_PORT", "9000")
	t.Setenv("TEST_VERBOSE", "true")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "http://localhost:5000", cfg.BaseURL)
	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.Verbose)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("TEST_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
