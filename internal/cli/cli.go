package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/buildinfo"
	"github.com/matzehuels/gridboard/pkg/cache"
	"github.com/matzehuels/gridboard/pkg/config"
	"github.com/matzehuels/gridboard/pkg/observability"
	"github.com/matzehuels/gridboard/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "gridboard"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	verbose    bool
	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "gridboard arranges dashboard widgets on a snapping grid",
		Long:         `gridboard is a dashboard grid layout engine. It computes pixel geometry for widgets placed on a column grid, applies drags and resizes with collision rules and compaction, and stores named layouts.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/gridboard/config.toml)")

	// Engine commands on layout files
	root.AddCommand(c.geometryCommand())
	root.AddCommand(c.dragCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.compactCommand())
	root.AddCommand(c.lockCommand())
	root.AddCommand(c.collapseCommand())
	root.AddCommand(c.removeCommand())

	// Preview and editing
	root.AddCommand(c.showCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.editCommand())

	// Storage and serving
	root.AddCommand(c.layoutsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads configuration, settles the log level and attaches the logger
// to the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	c.cfg = cfg

	switch {
	case c.verbose:
		c.SetLogLevel(LogDebug)
	case cfg.Log.Level != "":
		level, err := log.ParseLevel(cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("config [log] level: %w", err)
		}
		c.SetLogLevel(level)
	}
	if c.Logger.GetLevel() <= LogDebug {
		c.enableDebugHooks()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

func (c *CLI) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFromFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// config returns the loaded configuration, falling back to the defaults
// when a command runs without the root pre-run (as in tests).
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// enableDebugHooks routes engine, store, cache and HTTP events to the
// logger.
func (c *CLI) enableDebugHooks() {
	h := &logHooks{logger: c.Logger}
	observability.SetEngineHooks(h)
	observability.SetStoreHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

// =============================================================================
// Backends
// =============================================================================

// openStore opens the configured layout store. Remote backends show a
// spinner while connecting.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.config().Store
	remote := cfg.Backend == config.BackendRedis || cfg.Backend == config.BackendMongo

	var spin *spinner
	if remote {
		spin = newSpinner(ctx, nil, fmt.Sprintf("Connecting to %s...", cfg.Backend))
		spin.start()
	}
	st, err := store.Open(ctx, cfg)
	if err != nil {
		if spin != nil {
			if spin.interrupted() {
				spin.stop()
				return nil, ctx.Err()
			}
			spin.fail(fmt.Sprintf("Could not reach %s", cfg.Backend))
		}
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	if spin != nil {
		spin.succeed(fmt.Sprintf("Connected to %s", cfg.Backend))
	}
	loggerFromContext(ctx).Debug("store ready", "backend", cfg.Backend)
	return st, nil
}

// openCache opens the configured geometry cache.
func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	cfg := c.config()
	switch cfg.Cache.Backend {
	case config.CacheFile:
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			return nil, err
		}
		return cache.Prefixed(fc, cfg.Cache.Prefix), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return cache.Prefixed(rc, cfg.Cache.Prefix), nil
	default:
		return cache.NewNullCache(), nil
	}
}
