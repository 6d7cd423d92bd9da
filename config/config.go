// ABOUTME: Client configuration stored at XDG config paths
// ABOUTME: Handles file persistence, .env loading, and RANKUP_* environment overrides
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Session backend names.
const (
	BackendFile  = "file"
	BackendCharm = "charm"
)

const (
	DefaultAPIURL      = "http://localhost:5000/api"
	DefaultReferralURL = "http://localhost:5173/signup"
	DefaultTimeout     = 30 * time.Second
)

// Config holds everything needed to build a store and its front ends.
type Config struct {
	APIURL          string `json:"api_url"`
	ReferralBaseURL string `json:"referral_base_url"`
	SessionBackend  string `json:"session_backend"`
	LogLevel        string `json:"log_level"`
	Timeout         string `json:"timeout"`
	DBPath          string `json:"db_path,omitempty"`
	Journal         bool   `json:"journal"`
}

func Default() *Config {
	return &Config{
		APIURL:          DefaultAPIURL,
		ReferralBaseURL: DefaultReferralURL,
		SessionBackend:  BackendFile,
		LogLevel:        "warn",
		Timeout:         DefaultTimeout.String(),
		Journal:         true,
	}
}

// Dir returns the XDG config directory for rankup.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, "rankup")
}

// Path returns the config file location.
func Path() string {
	return filepath.Join(Dir(), "config.json")
}

// LoadDotEnv loads .env from the working directory if present. Existing
// environment variables win.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to load .env", "err", err)
	}
}

// Load reads the config file, falling back to defaults when it does not exist.
// Environment variables override file values:
// - RANKUP_API_URL
// - RANKUP_REFERRAL_URL
// - RANKUP_SESSION_BACKEND
// - RANKUP_LOG_LEVEL
// - RANKUP_TIMEOUT
// - RANKUP_DB_PATH
// - RANKUP_JOURNAL.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path())
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RANKUP_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("RANKUP_REFERRAL_URL"); v != "" {
		cfg.ReferralBaseURL = v
	}
	if v := os.Getenv("RANKUP_SESSION_BACKEND"); v != "" {
		cfg.SessionBackend = v
	}
	if v := os.Getenv("RANKUP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("RANKUP_TIMEOUT"); v != "" {
		cfg.Timeout = v
	}
	if v := os.Getenv("RANKUP_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("RANKUP_JOURNAL"); v != "" {
		cfg.Journal = v == "true" || v == "1"
	}
}

// Validate rejects values that would fail later in less obvious ways.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("api_url must not be empty")
	}
	switch c.SessionBackend {
	case BackendFile, BackendCharm:
	default:
		return fmt.Errorf("unknown session backend %q (want %s or %s)", c.SessionBackend, BackendFile, BackendCharm)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses Timeout. Empty means the default.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid timeout %q", c.Timeout)
	}
	return d, nil
}

// Level returns the parsed log level, warn if it does not parse.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.WarnLevel
	}
	return lvl
}

// Save writes the config with restricted permissions.
func (c *Config) Save() error {
	if err := os.MkdirAll(Dir(), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(Path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
