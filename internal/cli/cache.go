package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/cache"
	"github.com/matzehuels/gridboard/pkg/config"
	gberr "github.com/matzehuels/gridboard/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the geometry cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand. File caches are
// emptied on disk; a redis cache loses its geometry keys.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached geometry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			var (
				count int
				where string
				err   error
			)

			switch cfg.Cache.Backend {
			case config.CacheFile:
				if _, statErr := os.Stat(cfg.Cache.Dir); os.IsNotExist(statErr) {
					printInfo("Cache is empty")
					return nil
				}
				fc, openErr := cache.NewFileCache(cfg.Cache.Dir)
				if openErr != nil {
					return fmt.Errorf("open cache: %w", openErr)
				}
				count, err = fc.Clear()
				where = fc.Dir()

			case config.CacheRedis:
				rc, openErr := cache.NewRedisCache(cmd.Context(), cache.RedisConfig{
					Addr:     cfg.Store.RedisAddr,
					Password: cfg.Store.RedisPassword,
					DB:       cfg.Store.RedisDB,
				})
				if openErr != nil {
					return openErr
				}
				defer rc.Close()
				count, err = rc.Clear(cmd.Context(), cfg.Cache.Prefix+"geometry:*")
				where = "redis://" + cfg.Store.RedisAddr

			default:
				printInfo("Cache backend is %q; nothing to clear", cfg.Cache.Backend)
				return nil
			}

			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared %d cached entries", count)
			printDetail("Location: %s", where)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config().Cache
			if cfg.Backend != config.CacheFile {
				return gberr.New(gberr.ErrCodeInvalidConfig, "cache backend %q has no directory", cfg.Backend)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Dir)
			return nil
		},
	}
}
