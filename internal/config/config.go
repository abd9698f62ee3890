package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pkgconfig "github.com/sejin-coding/currex-go/pkg/config"
)

// Config holds all configuration for the currex client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Backend API
	APIBaseURL string `env:"CURREX_API_BASE_URL" envDefault:"https://currex.kro.kr"`

	// Chat websocket server. Empty means derive from APIBaseURL.
	ChatServerURL string `env:"CURREX_CHAT_WS_URL"`

	// Third-party services
	RatesBaseURL      string `env:"CURREX_RATES_URL" envDefault:"https://api.exchangerate-api.com"`
	RecognizerBaseURL string `env:"CURREX_RECOGNIZER_URL" envDefault:"http://localhost:5000"`

	// Local login callback listener
	LoginCallbackPort int `env:"CURREX_LOGIN_PORT" envDefault:"8421"`

	// Session snapshot file. Empty means ~/.currex/session.json.
	SnapshotPath string `env:"CURREX_SESSION_FILE"`

	// Prometheus metrics listener, e.g. ":9090". Empty disables it.
	MetricsAddr string `env:"CURREX_METRICS_ADDR"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load currex config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("CURREX_API_BASE_URL must not be empty")
	}
	if c.LoginCallbackPort < 1 || c.LoginCallbackPort > 65535 {
		return fmt.Errorf("invalid login callback port: %d", c.LoginCallbackPort)
	}
	return nil
}

// ChatURL returns the chat server URL, derived from the API base when not
// set explicitly.
func (c *Config) ChatURL() string {
	if c.ChatServerURL != "" {
		return c.ChatServerURL
	}
	return strings.TrimSuffix(c.APIBaseURL, "/") + "/socket"
}

// SessionFile returns the session snapshot path, defaulting to a dotfile in
// the user's home directory.
func (c *Config) SessionFile() (string, error) {
	if c.SnapshotPath != "" {
		return c.SnapshotPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".currex", "session.json"), nil
}
