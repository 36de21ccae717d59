// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Dispatcher configuration: defaults, validation and file loading (TOML or YAML).

package control

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/momentics/fdreactor/api"
)

// Backend names accepted by Config.Backend.
const (
	BackendPoll   = "poll"
	BackendSelect = "select"
)

// Sweep policies accepted by Config.SweepPolicy.
const (
	// SweepComplete keeps iterating a sweep after a callback mutates the table.
	SweepComplete = "complete"
	// SweepAbandon stops the current sweep after any registration is added or removed.
	SweepAbandon = "abandon"
)

// Config holds the tunables of a dispatcher and its logging.
type Config struct {
	Backend          string `toml:"backend" yaml:"backend"`
	SweepPolicy      string `toml:"sweep_policy" yaml:"sweep_policy"`
	RetryInterrupted bool   `toml:"retry_interrupted" yaml:"retry_interrupted"`
	LogLevel         string `toml:"log_level" yaml:"log_level"`
	LogFormat        string `toml:"log_format" yaml:"log_format"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Backend:          BackendPoll,
		SweepPolicy:      SweepComplete,
		RetryInterrupted: true,
		LogLevel:         "info",
		LogFormat:        "console",
	}
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendPoll, BackendSelect:
	default:
		return api.NewError(api.ErrCodeInvalidArgument, "unknown backend").WithContext("backend", c.Backend)
	}
	switch c.SweepPolicy {
	case SweepComplete, SweepAbandon:
	default:
		return api.NewError(api.ErrCodeInvalidArgument, "unknown sweep policy").WithContext("sweep_policy", c.SweepPolicy)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return api.NewError(api.ErrCodeInvalidArgument, "unknown log format").WithContext("log_format", c.LogFormat)
	}
	return nil
}

// Digest returns a BLAKE3 fingerprint of the effective configuration.
func (c Config) Digest() string {
	var b strings.Builder
	fmt.Fprintf(&b, "backend=%s\nsweep_policy=%s\nretry_interrupted=%t\nlog_level=%s\nlog_format=%s\n",
		c.Backend, c.SweepPolicy, c.RetryInterrupted, c.LogLevel, c.LogFormat)
	sum := blake3.Sum256([]byte(b.String()))
	return "blake3:" + hex.EncodeToString(sum[:16])
}

// LoadConfig reads path over DefaultConfig. The decoder is chosen by extension.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	default:
		return Config{}, api.NewError(api.ErrCodeNotSupported, "unsupported config format").WithContext("path", path)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.SweepPolicy = strings.ToLower(strings.TrimSpace(cfg.SweepPolicy))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}
