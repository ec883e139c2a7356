package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/render"
)

// previewOpts holds the flags for show and watch.
type previewOpts struct {
	plain      bool   // no colour
	cellWidth  int    // characters per grid column
	cellHeight int    // lines per grid row
	selected   string // widget to highlight
}

func addPreviewFlags(cmd *cobra.Command, o *previewOpts) {
	cmd.Flags().BoolVar(&o.plain, "plain", false, "disable colour")
	cmd.Flags().IntVar(&o.cellWidth, "cell-width", 0, "characters per grid column (default 6)")
	cmd.Flags().IntVar(&o.cellHeight, "cell-height", 0, "lines per grid row (default 2)")
	cmd.Flags().StringVar(&o.selected, "select", "", "widget id to highlight")
}

// preview renders rec as a character grid.
func preview(rec *layout.Record, o previewOpts) string {
	ro := render.Options{CellWidth: o.cellWidth, CellHeight: o.cellHeight, Selected: o.selected}
	if o.plain {
		return render.Text(rec.Widgets, rec.Cols, ro)
	}
	return render.Styled(rec.Widgets, rec.Cols, ro)
}

func (c *CLI) showCommand() *cobra.Command {
	var o previewOpts

	cmd := &cobra.Command{
		Use:   "show [layout]",
		Short: "Draw a layout file on the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := c.readLayout(args[0])
			if err != nil {
				return err
			}
			fmt.Println(StyleTitle.Render(rec.Name))
			fmt.Println(preview(rec, o))
			printLayoutStats(len(rec.Widgets), c.config().Grid.Width, false)
			return nil
		},
	}

	addPreviewFlags(cmd, &o)
	return cmd
}

func (c *CLI) watchCommand() *cobra.Command {
	var o previewOpts

	cmd := &cobra.Command{
		Use:   "watch [layout]",
		Short: "Redraw a layout file whenever it changes",
		Long: `Redraw a layout file whenever it changes on disk.

Runs until interrupted. Parse errors are shown in place of the preview, so a
half-written file does not stop the watch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], o, os.Stdout)
		},
	}

	addPreviewFlags(cmd, &o)
	return cmd
}

// runWatch draws path, then redraws it on every write, create or rename
// event for that file until ctx is cancelled. The parent directory is
// watched rather than the file so atomic replacements are seen.
func (c *CLI) runWatch(ctx context.Context, path string, o previewOpts, out io.Writer) error {
	logger := loggerFromContext(ctx)

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Debug("watching", "file", abs)

	draw := func() {
		fmt.Fprint(out, "\033[H\033[2J")
		rec, err := c.readLayout(abs)
		if err != nil {
			fmt.Fprintln(out, styleIconError.Render(iconError)+" "+err.Error())
			return
		}
		fmt.Fprintln(out, StyleTitle.Render(rec.Name)+"  "+StyleDim.Render(time.Now().Format("15:04:05")))
		fmt.Fprintln(out, preview(rec, o))
	}
	draw()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				logger.Debug("layout changed", "op", ev.Op.String())
				draw()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		}
	}
}
