// Package config provides TOML configuration for gridboard.
//
// A config file is optional. [Load] looks in the XDG config directory and
// falls back to [Default] when nothing is found. A handful of GRIDBOARD_*
// environment variables override file values so containers can be
// configured without mounting a file.
//
// Example config.toml:
//
//	[grid]
//	cols = 12
//	row_height = 100
//	gap = 16
//	compact = "vertical"
//
//	[store]
//	backend = "sqlite"
//	path = "/var/lib/gridboard/layouts.db"
//
//	[server]
//	addr = ":8080"
//	cache_ttl = "10m"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the complete gridboard configuration.
type Config struct {
	Grid   Grid   `toml:"grid"`
	Store  Store  `toml:"store"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
	Log    Log    `toml:"log"`
}

// Grid holds the default grid settings for new layouts and the drag and
// resize policy.
type Grid struct {
	Cols             int     `toml:"cols"`
	RowHeight        float64 `toml:"row_height"`
	Gap              float64 `toml:"gap"`
	PaddingX         float64 `toml:"padding_x"`
	PaddingY         float64 `toml:"padding_y"`
	Width            float64 `toml:"width"`
	Compact          string  `toml:"compact"`
	PreventCollision bool    `toml:"prevent_collision"`
}

// Store selects and configures the layout storage backend.
type Store struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// Cache selects the geometry cache backend. The redis backend reuses the
// store's redis connection settings. Prefix is prepended to every key.
type Cache struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	Prefix  string `toml:"prefix"`
}

// Server configures the HTTP API.
type Server struct {
	Addr        string   `toml:"addr"`
	ReadTimeout Duration `toml:"read_timeout"`
	CacheTTL    Duration `toml:"cache_ttl"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Grid: Grid{
			Cols:      grid.DefaultCols,
			RowHeight: grid.DefaultRowHeight,
			Gap:       grid.DefaultGap,
			Width:     1200,
			Compact:   string(grid.CompactVertical),
		},
		Store: Store{
			Backend:       BackendFile,
			Path:          filepath.Join(xdgConfigHome(home), "gridboard", "layouts"),
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "gridboard",
		},
		Cache: Cache{
			Backend: CacheFile,
			Dir:     filepath.Join(xdgCacheHome(home), "gridboard"),
		},
		Server: Server{
			Addr:        ":8080",
			ReadTimeout: Duration{15 * time.Second},
			CacheTTL:    Duration{10 * time.Minute},
		},
		Log: Log{
			Level: "info",
		},
	}
}

// GridConfig returns the engine configuration described by the [grid]
// section.
func (c *Config) GridConfig() grid.Config {
	return grid.Config{
		Cols:      c.Grid.Cols,
		RowHeight: c.Grid.RowHeight,
		Gap:       c.Grid.Gap,
		Padding:   grid.Padding{X: c.Grid.PaddingX, Y: c.Grid.PaddingY},
		Width:     c.Grid.Width,
	}
}

// Options returns the drag and resize policy. An unparseable compact value
// disables compaction; Validate reports it.
func (c *Config) Options() grid.Options {
	kind, _ := grid.ParseCompactType(c.Grid.Compact)
	return grid.Options{
		PreventCollision: c.Grid.PreventCollision,
		Compact:          kind,
	}
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	if err := c.GridConfig().Validate(); err != nil {
		return gberr.Wrap(gberr.ErrCodeInvalidConfig, err, "[grid]")
	}
	if _, err := grid.ParseCompactType(c.Grid.Compact); err != nil {
		return gberr.Wrap(gberr.ErrCodeInvalidConfig, err, "[grid] compact")
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendFile, BackendSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			return gberr.New(gberr.ErrCodeInvalidConfig, "[store] path is required for the %s backend", c.Store.Backend)
		}
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return gberr.New(gberr.ErrCodeInvalidConfig, "[store] redis_addr is required for the redis backend")
		}
	case BackendMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDatabase == "" {
			return gberr.New(gberr.ErrCodeInvalidConfig, "[store] mongo_uri and mongo_database are required for the mongo backend")
		}
	default:
		return gberr.New(gberr.ErrCodeInvalidConfig, "[store] unknown backend %q", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case CacheNone, "":
	case CacheFile:
		if c.Cache.Dir == "" {
			return gberr.New(gberr.ErrCodeInvalidConfig, "[cache] dir is required for the file backend")
		}
	case CacheRedis:
		if c.Store.RedisAddr == "" {
			return gberr.New(gberr.ErrCodeInvalidConfig, "[cache] redis backend needs [store] redis_addr")
		}
	default:
		return gberr.New(gberr.ErrCodeInvalidConfig, "[cache] unknown backend %q", c.Cache.Backend)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return gberr.New(gberr.ErrCodeInvalidConfig, "[log] unknown level %q", c.Log.Level)
	}
	return nil
}
