package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/internal/server"
)

// serveCommand creates the command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout HTTP API",
		Long: `Serve the layout HTTP API.

Layouts are read from and written to the configured store. Geometry
responses are cached in the configured cache. The server shuts down
gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.config()
			if addr == "" {
				addr = cfg.Server.Addr
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			gc, err := c.openCache(ctx)
			if err != nil {
				return err
			}
			defer gc.Close()

			srv := server.New(st, gc, server.Options{
				Grid:     cfg.GridConfig(),
				Policy:   cfg.Options(),
				CacheTTL: cfg.Server.CacheTTL.Duration,
				Timeout:  cfg.Server.ReadTimeout.Duration,
				Logger:   c.Logger,
			})
			printInfo("Serving %s store on %s", cfg.Store.Backend, StyleHighlight.Render(addr))
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: [server] addr)")
	return cmd
}
