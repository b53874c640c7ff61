// Package config loads server configuration from ~/.agentcomm/config.toml.
//
// A missing config file is not an error — the server runs with defaults.
// Tests load from an explicit directory instead of the real home.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// ConfigDir is the name of the config directory in the user's home.
	ConfigDir = ".agentcomm"

	// ConfigFileName is the name of the config file inside ConfigDir.
	ConfigFileName = "config.toml"

	// DefaultOnlineWindow is how recently an agent must have pinged
	// to be reported as online.
	DefaultOnlineWindow = 5 * time.Minute
)

// Config holds the resolved server configuration.
type Config struct {
	// DataDir is where the SQLite database lives.
	DataDir string

	// OnlineWindow is the presence threshold for agent listings.
	OnlineWindow time.Duration

	Tracker TrackerConfig
}

// TrackerConfig configures the external issue tracker integration.
type TrackerConfig struct {
	// Enabled turns issue mirroring on. When false, issue tools
	// report the tracker as unconfigured.
	Enabled bool

	// Repo is the owner/name the tracker client targets.
	Repo string

	// Bin is the gh binary to invoke (default "gh").
	Bin string
}

// configFile is the raw TOML structure of config.toml.
type configFile struct {
	Server  serverSection  `toml:"server"`
	Tracker trackerSection `toml:"tracker"`
}

type serverSection struct {
	DataDir          string `toml:"data_dir"`
	OnlineWindowSecs *int   `toml:"online_window_seconds"`
}

type trackerSection struct {
	Enabled bool   `toml:"enabled"`
	Repo    string `toml:"repo"`
	Bin     string `toml:"bin"`
}

// Load reads the configuration from the user's home directory.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}
	return LoadFromDir(home)
}

// LoadFromDir loads configuration using the given directory as home.
// Useful for testing.
func LoadFromDir(home string) (*Config, error) {
	cfg := defaults(home)

	path := filepath.Join(home, ConfigDir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var raw configFile
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if raw.Server.DataDir != "" {
		cfg.DataDir = raw.Server.DataDir
	}
	if raw.Server.OnlineWindowSecs != nil && *raw.Server.OnlineWindowSecs > 0 {
		cfg.OnlineWindow = time.Duration(*raw.Server.OnlineWindowSecs) * time.Second
	}

	cfg.Tracker.Enabled = raw.Tracker.Enabled
	if raw.Tracker.Repo != "" {
		cfg.Tracker.Repo = raw.Tracker.Repo
	}
	if raw.Tracker.Bin != "" {
		cfg.Tracker.Bin = raw.Tracker.Bin
	}

	return cfg, nil
}

// defaults returns the configuration used when no config file exists.
func defaults(home string) *Config {
	return &Config{
		DataDir:      filepath.Join(home, ConfigDir),
		OnlineWindow: DefaultOnlineWindow,
		Tracker: TrackerConfig{
			Enabled: false,
			Bin:     "gh",
		},
	}
}
