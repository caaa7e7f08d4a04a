// Package config loads the daemon configuration from
// ~/.config/gridswitch/config.yaml (or .json). Every field has a
// compiled-in default, so a missing file is not an error.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/gridswitch/internal/gesture"
	"github.com/yourusername/gridswitch/internal/ipc"
)

const DefaultConfigDir = ".config/gridswitch"

// Config is the root configuration.
type Config struct {
	Gestures   gesture.Config   `json:"gestures" yaml:"gestures"`
	Visualizer VisualizerConfig `json:"visualizer" yaml:"visualizer"`
	Daemon     DaemonConfig     `json:"daemon" yaml:"daemon"`
}

// VisualizerConfig carries timing knobs consumed by the overlay process.
// The daemon only transports them; they ride along in subscribe pushes
// so the overlay needs no config file of its own.
type VisualizerConfig struct {
	// CursorAnimationMS is how long the cell highlight takes to glide
	// to a new position.
	CursorAnimationMS uint64 `json:"cursorAnimationMs" yaml:"cursorAnimationMs"`
	// LingerMS is how long the overlay stays up after the last Show.
	LingerMS uint64 `json:"lingerMs" yaml:"lingerMs"`
	// FadeOutMS is the hide animation duration.
	FadeOutMS uint64 `json:"fadeOutMs" yaml:"fadeOutMs"`
}

// DaemonConfig covers the daemon's own plumbing.
type DaemonConfig struct {
	// Socket is the control socket path. Empty selects
	// $XDG_RUNTIME_DIR/gridswitch.sock.
	Socket string `json:"socket,omitempty" yaml:"socket,omitempty"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Gestures: gesture.DefaultConfig(),
		Visualizer: VisualizerConfig{
			CursorAnimationMS: 80,
			LingerMS:          300,
			FadeOutMS:         200,
		},
	}
}

// SocketPath resolves the effective control socket path.
func (c *Config) SocketPath() string {
	if c.Daemon.Socket != "" {
		return c.Daemon.Socket
	}
	return ipc.DefaultSocketPath()
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if err := c.Gestures.Validate(); err != nil {
		return fmt.Errorf("gestures: %w", err)
	}
	return nil
}

// Load reads the config at path. An empty path selects the default
// location, where a missing file yields Default(); an explicit path
// that does not exist is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		yamlPath := filepath.Join(home, DefaultConfigDir, "config.yaml")
		jsonPath := filepath.Join(home, DefaultConfigDir, "config.json")

		if _, err := os.Stat(yamlPath); err == nil {
			path = yamlPath
		} else if _, err := os.Stat(jsonPath); err == nil {
			path = jsonPath
		} else {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadFromBytes(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
}

// LoadFromBytes parses raw config data. format is "yaml", "yml" or
// "json". Absent fields keep their defaults.
func LoadFromBytes(data []byte, format string) (*Config, error) {
	cfg := Default()

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
