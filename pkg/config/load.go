package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	gberr "github.com/matzehuels/gridboard/pkg/errors"
)

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/gridboard/config.toml
//  2. ~/.config/gridboard/config.toml
//
// If no file exists, returns Default() with environment overrides applied.
func Load() (*Config, error) {
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := Default()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path. A missing
// file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, gberr.Wrap(gberr.ErrCodeInvalidConfig, err, "open %s", path)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	return cfg, nil
}

// LoadFromReader reads TOML configuration on top of the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GRIDBOARD_STORE"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("GRIDBOARD_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("GRIDBOARD_REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := os.Getenv("GRIDBOARD_MONGO_URI"); v != "" {
		cfg.Store.MongoURI = v
	}
	if v := os.Getenv("GRIDBOARD_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("GRIDBOARD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// SearchPaths returns the ordered list of config file paths to try.
func SearchPaths() []string {
	home, _ := os.UserHomeDir()
	var paths []string

	xdg := xdgConfigHome(home)
	paths = append(paths, filepath.Join(xdg, "gridboard", "config.toml"))

	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, "gridboard", "config.toml"))
	}
	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

// xdgCacheHome returns XDG_CACHE_HOME or ~/.cache as fallback.
func xdgCacheHome(home string) string {
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".cache")
}
