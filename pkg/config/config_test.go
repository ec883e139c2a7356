package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GRIDBOARD_STORE", "GRIDBOARD_STORE_PATH", "GRIDBOARD_REDIS_ADDR",
		"GRIDBOARD_MONGO_URI", "GRIDBOARD_ADDR", "GRIDBOARD_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}

	g := cfg.GridConfig()
	if g.Cols != 12 || g.RowHeight != 100 || g.Gap != 16 {
		t.Errorf("GridConfig() = %+v", g)
	}
	if opts := cfg.Options(); opts.Compact != grid.CompactVertical || opts.PreventCollision {
		t.Errorf("Options() = %+v", opts)
	}
}

func TestLoadFromReader(t *testing.T) {
	clearEnv(t)

	doc := `
[grid]
cols = 24
row_height = 40
gap = 8
padding_x = 10
compact = "horizontal"
prevent_collision = true

[store]
backend = "sqlite"
path = "/tmp/layouts.db"

[server]
addr = "127.0.0.1:9000"
cache_ttl = "90s"

[log]
level = "debug"
`
	cfg, err := LoadFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadFromReader() error: %v", err)
	}

	want := grid.Config{Cols: 24, RowHeight: 40, Gap: 8, Padding: grid.Padding{X: 10}, Width: 1200}
	if got := cfg.GridConfig(); got != want {
		t.Errorf("GridConfig() = %+v, want %+v", got, want)
	}
	if opts := cfg.Options(); opts.Compact != grid.CompactHorizontal || !opts.PreventCollision {
		t.Errorf("Options() = %+v", opts)
	}
	if cfg.Store.Backend != BackendSQLite || cfg.Store.Path != "/tmp/layouts.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Server.CacheTTL.Duration != 90*time.Second {
		t.Errorf("CacheTTL = %v", cfg.Server.CacheTTL)
	}
	// Unset keys keep their defaults
	if cfg.Server.ReadTimeout.Duration != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want default", cfg.Server.ReadTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadFromReaderErrors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		doc  string
	}{
		{"bad toml", "[grid\ncols = 1"},
		{"bad duration", "[server]\ncache_ttl = \"soon\""},
		{"negative duration", "[server]\nread_timeout = \"-1s\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromReader(strings.NewReader(tt.doc)); err == nil {
				t.Error("LoadFromReader() succeeded, want error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GRIDBOARD_STORE", "redis")
	t.Setenv("GRIDBOARD_REDIS_ADDR", "cache:6379")
	t.Setenv("GRIDBOARD_ADDR", ":9999")
	t.Setenv("GRIDBOARD_LOG_LEVEL", "warn")

	cfg, err := LoadFromReader(strings.NewReader("[store]\nbackend = \"file\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Backend != BackendRedis || cfg.Store.RedisAddr != "cache:6379" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Server.Addr != ":9999" || cfg.Log.Level != "warn" {
		t.Errorf("Server.Addr = %q, Log.Level = %q", cfg.Server.Addr, cfg.Log.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := LoadFromFile(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFromFile(missing) error: %v", err)
	}
	if cfg.Grid.Cols != grid.DefaultCols {
		t.Error("missing file should yield defaults")
	}

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[grid]\ncols = 6\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Grid.Cols != 6 {
		t.Errorf("Cols = %d, want 6", cfg.Grid.Cols)
	}

	if err := os.WriteFile(path, []byte("[grid"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); !gberr.Is(err, gberr.ErrCodeInvalidConfig) {
		t.Errorf("LoadFromFile(bad) error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadSearchesXDG(t *testing.T) {
	clearEnv(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	if err := os.MkdirAll(filepath.Join(xdg, "gridboard"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(xdg, "gridboard", "config.toml"), []byte("[grid]\ngap = 4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if paths := SearchPaths(); paths[0] != filepath.Join(xdg, "gridboard", "config.toml") {
		t.Errorf("SearchPaths()[0] = %s", paths[0])
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Grid.Gap != 4 {
		t.Errorf("Gap = %g, want 4", cfg.Grid.Gap)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero cols", func(c *Config) { c.Grid.Cols = 0 }},
		{"negative gap", func(c *Config) { c.Grid.Gap = -1 }},
		{"bad compact", func(c *Config) { c.Grid.Compact = "diagonal" }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "etcd" }},
		{"file without path", func(c *Config) { c.Store.Path = " " }},
		{"redis without addr", func(c *Config) { c.Store.Backend = BackendRedis; c.Store.RedisAddr = "" }},
		{"mongo without db", func(c *Config) { c.Store.Backend = BackendMongo; c.Store.MongoDatabase = "" }},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"file cache without dir", func(c *Config) { c.Cache.Dir = "" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !gberr.Is(err, gberr.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}

	cfg := Default()
	cfg.Store.Backend = BackendMemory
	cfg.Store.Path = ""
	cfg.Cache.Backend = CacheNone
	if err := cfg.Validate(); err != nil {
		t.Errorf("memory store without path: %v", err)
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("2m30s")); err != nil {
		t.Fatal(err)
	}
	if d.Duration != 150*time.Second {
		t.Errorf("Duration = %v", d.Duration)
	}
	text, _ := d.MarshalText()
	if string(text) != "2m30s" {
		t.Errorf("MarshalText() = %q", text)
	}
	if err := d.UnmarshalText(nil); err != nil || d.Duration != 0 {
		t.Errorf("empty text = %v, %v", d.Duration, err)
	}
}
