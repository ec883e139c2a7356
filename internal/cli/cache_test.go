package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/gridboard/pkg/cache"
	gberr "github.com/matzehuels/gridboard/pkg/errors"
)

func TestCacheClear(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	fc, err := cache.NewFileCache(filepath.Join(env.dir, "cache"))
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	for _, key := range []string{
		cache.GeometryKey("one", 1184),
		cache.GeometryKey("two", 800),
	} {
		if err := fc.Set(ctx, key, []byte(`{}`), time.Hour); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if err := env.run(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error = %v", err)
	}
	if _, ok, _ := fc.Get(ctx, cache.GeometryKey("one", 1184)); ok {
		t.Error("entry survived cache clear")
	}
}

func TestCacheClearMissingDir(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "cache")); !os.IsNotExist(err) {
		t.Errorf("cache clear created the cache dir: %v", err)
	}
}

func TestCacheClearOtherBackend(t *testing.T) {
	env := newTestEnv(t)
	cfg := filepath.Join(env.dir, "none.toml")
	if err := os.WriteFile(cfg, []byte("[cache]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	env.config = cfg

	if err := env.run(t, "cache", "clear"); err != nil {
		t.Errorf("cache clear on none backend error = %v", err)
	}
}

func TestCachePath(t *testing.T) {
	env := newTestEnv(t)

	var out bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"--config", env.config, "cache", "path"})
	root.SetOut(&out)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("cache path error = %v", err)
	}
	if got, want := strings.TrimSpace(out.String()), filepath.Join(env.dir, "cache"); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}

	none := filepath.Join(env.dir, "none.toml")
	if err := os.WriteFile(none, []byte("[cache]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	env.config = none
	if err := env.run(t, "cache", "path"); !gberr.Is(err, gberr.ErrCodeInvalidConfig) {
		t.Errorf("cache path on none backend error = %v, want INVALID_CONFIG", err)
	}
}

func TestOpenCachePrefix(t *testing.T) {
	env := newTestEnv(t)
	c := New(io.Discard, LogInfo)
	loadTestConfig(t, c, env)
	c.cfg.Cache.Prefix = "staging:"
	ctx := context.Background()

	gc, err := c.openCache(ctx)
	if err != nil {
		t.Fatalf("openCache() error = %v", err)
	}
	defer gc.Close()
	if err := gc.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}

	fc, err := cache.NewFileCache(filepath.Join(env.dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := fc.Get(ctx, "staging:k"); !ok {
		t.Error("entry not stored under the prefixed key")
	}
	if _, ok, _ := fc.Get(ctx, "k"); ok {
		t.Error("entry stored under the bare key")
	}
}
