// ABOUTME: Settings for the Charm KV session backend
// ABOUTME: Stored next to the rankup config; RANKUP_CHARM_HOST overrides the server

package charm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	DefaultHost = "charm.2389.dev"

	// AppName names the KV database on the charm server.
	AppName = "rankup"

	HostEnv = "RANKUP_CHARM_HOST"
)

// Config holds charm connection settings.
type Config struct {
	Host string `json:"host,omitempty"`

	// AutoSync pushes after every write so other devices see a new login at once.
	AutoSync bool `json:"auto_sync"`
}

func DefaultConfig() *Config {
	return &Config{Host: DefaultHost, AutoSync: true}
}

// ConfigPath is the charm settings file.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "charm.json")
}

// LoadConfig reads the settings file, falling back to defaults when it is
// missing. The host env override applies either way.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read charm config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse charm config: %w", err)
		}
	}

	if host := os.Getenv(HostEnv); host != "" {
		cfg.Host = host
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	return cfg, nil
}

// Save writes the settings file with owner-only permissions.
func (c *Config) Save() error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode charm config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
