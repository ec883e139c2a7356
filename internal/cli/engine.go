package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/pkg/board"
	"github.com/matzehuels/gridboard/pkg/cache"
	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// editOpts holds the flags shared by commands that modify a layout file.
// Zero values fall back to the [grid] section of the config.
type editOpts struct {
	output           string  // write here instead of back to the input
	width            float64 // container width in pixels
	preventCollision bool    // reject moves that overlap another widget
	compact          string  // compaction mode after the edit
}

func addOutputFlag(cmd *cobra.Command, o *editOpts) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "write the result here instead of back to the input file")
}

func addPolicyFlags(cmd *cobra.Command, o *editOpts) {
	cmd.Flags().Float64Var(&o.width, "width", 0, "container width in pixels (default: [grid] width)")
	cmd.Flags().BoolVar(&o.preventCollision, "prevent-collision", false, "reject edits that overlap another widget")
	cmd.Flags().StringVar(&o.compact, "compact", "", "compaction after the edit: vertical, horizontal, none (default: [grid] compact)")
}

// policy resolves the container width and edit policy for cmd, letting
// explicitly set flags override the config.
func (c *CLI) policy(cmd *cobra.Command, o *editOpts) (float64, grid.Options, error) {
	cfg := c.config()
	width := cfg.Grid.Width
	if o.width > 0 {
		width = o.width
	}
	opts := cfg.Options()
	if cmd.Flags().Changed("prevent-collision") {
		opts.PreventCollision = o.preventCollision
	}
	if cmd.Flags().Changed("compact") {
		kind, err := grid.ParseCompactType(o.compact)
		if err != nil {
			return 0, opts, err
		}
		opts.Compact = kind
	}
	return width, opts, nil
}

// =============================================================================
// Layout file helpers
// =============================================================================

// readLayout reads and validates a layout file. Grid settings the file
// leaves out come from the [grid] config section.
func (c *CLI) readLayout(path string) (*layout.Record, error) {
	rec, err := layout.ReadFile(path, layout.WithDefaults(c.config().GridConfig()))
	if err != nil {
		return nil, err
	}
	if err := layout.Validate(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// writeLayout stamps rec and writes it to output, or back to input when no
// output is given.
func writeLayout(rec *layout.Record, input, output string) (string, error) {
	path := input
	if output != "" {
		path = output
	}
	rec.Touch()
	if err := layout.WriteFile(path, rec); err != nil {
		return "", err
	}
	return path, nil
}

func requireWidget(rec *layout.Record, id string) error {
	if rec.Widgets.Index(id) < 0 {
		return gberr.New(gberr.ErrCodeWidgetNotFound, "layout %s has no widget %q", rec.Name, id)
	}
	return nil
}

// editBoard hosts rec in edit mode so engine commands go through the same
// gesture path as the interactive editor.
func editBoard(rec *layout.Record, width float64, opts grid.Options) *board.Board {
	return board.New(rec.Widgets, rec.Config(width), opts, board.WithMode(board.Edit))
}

// =============================================================================
// geometry
// =============================================================================

// geometry is the pixel layout of a record at one container width.
type geometry struct {
	Width      float64              `json:"width"`
	Height     float64              `json:"height"`
	Breakpoint string               `json:"breakpoint"`
	Rects      map[string]grid.Rect `json:"rects"`
}

func (c *CLI) geometryCommand() *cobra.Command {
	var (
		o       editOpts
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "geometry [layout]",
		Short: "Print the pixel rectangle of every widget",
		Long: `Print the pixel rectangle of every widget in a layout file.

Rectangles are computed for the container width given by --width (default:
the [grid] width from the config). Results are cached by layout content and
width.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGeometry(cmd.Context(), cmd, args[0], &o, asJSON, noCache)
		},
	}

	cmd.Flags().Float64Var(&o.width, "width", 0, "container width in pixels (default: [grid] width)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runGeometry(ctx context.Context, cmd *cobra.Command, path string, o *editOpts, asJSON, noCache bool) error {
	rec, err := c.readLayout(path)
	if err != nil {
		return err
	}
	width, _, err := c.policy(cmd, o)
	if err != nil {
		return err
	}

	geo, cached, err := c.computeGeometry(ctx, rec, width, noCache)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := json.MarshalIndent(geo, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(geometryTable(rec, geo))
	printKeyValue("Breakpoint", geo.Breakpoint)
	printKeyValue("Height", fmt.Sprintf("%gpx", geo.Height))
	printLayoutStats(len(rec.Widgets), width, cached)
	return nil
}

// computeGeometry returns the geometry of rec at width, consulting the
// configured cache first.
func (c *CLI) computeGeometry(ctx context.Context, rec *layout.Record, width float64, noCache bool) (*geometry, bool, error) {
	logger := loggerFromContext(ctx)

	gc := cache.NewNullCache()
	if !noCache {
		opened, err := c.openCache(ctx)
		if err != nil {
			logger.Warn("cache unavailable", "err", err)
		} else {
			gc = opened
		}
	}
	gc = cache.Instrument(gc, "geometry")
	defer gc.Close()

	key := cache.GeometryKey(layout.Fingerprint(rec), width)
	if data, ok, err := gc.Get(ctx, key); err == nil && ok {
		var geo geometry
		if err := json.Unmarshal(data, &geo); err == nil {
			return &geo, true, nil
		}
	}

	cfg := rec.Config(width)
	geo := &geometry{
		Width:      width,
		Height:     grid.GridHeight(rec.Widgets, cfg),
		Breakpoint: grid.Breakpoint(width, nil),
		Rects:      grid.PixelRects(rec.Widgets, cfg),
	}
	if data, err := json.Marshal(geo); err == nil {
		if err := gc.Set(ctx, key, data, c.config().Server.CacheTTL.Duration); err != nil {
			logger.Debug("cache write failed", "err", err)
		}
	}
	return geo, false, nil
}

func geometryTable(rec *layout.Record, geo *geometry) string {
	rows := make([][]string, 0, len(rec.Widgets))
	for _, w := range rec.Widgets {
		r := geo.Rects[w.ID]
		flags := ""
		if w.Locked {
			flags += "locked "
		}
		if w.Collapsed {
			flags += "collapsed"
		}
		rows = append(rows, []string{
			w.ID,
			w.Title,
			w.Position.String(),
			fmt.Sprintf("%g", r.Left),
			fmt.Sprintf("%g", r.Top),
			fmt.Sprintf("%g", r.Width),
			fmt.Sprintf("%g", r.Height),
			flags,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Widget", "Title", "Grid", "Left", "Top", "Width", "Height", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col == 7:
				return StyleDim
			}
			return StyleValue
		}).
		Render()
}

// =============================================================================
// drag / resize
// =============================================================================

func (c *CLI) dragCommand() *cobra.Command {
	return c.gestureCommand("drag", "Move a widget by a pixel displacement", (*board.Board).Drag)
}

func (c *CLI) resizeCommand() *cobra.Command {
	return c.gestureCommand("resize", "Resize a widget by a pixel displacement", (*board.Board).Resize)
}

func (c *CLI) gestureCommand(name, short string, apply func(*board.Board, string, float64, float64) bool) *cobra.Command {
	var (
		o      editOpts
		dx, dy float64
	)

	cmd := &cobra.Command{
		Use:   name + " [layout] [widget]",
		Short: short,
		Long: short + `.

The displacement is in pixels, as a pointer would report it, and snaps to
whole grid units for the container width. A rejected ` + name + ` (locked
widget, collision with --prevent-collision) leaves the file untouched.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeLayoutWidget,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGesture(cmd, name, args[0], args[1], dx, dy, &o, apply)
		},
	}

	cmd.Flags().Float64Var(&dx, "dx", 0, "horizontal displacement in pixels")
	cmd.Flags().Float64Var(&dy, "dy", 0, "vertical displacement in pixels")
	addPolicyFlags(cmd, &o)
	addOutputFlag(cmd, &o)

	return cmd
}

func (c *CLI) runGesture(cmd *cobra.Command, name, path, id string, dx, dy float64, o *editOpts, apply func(*board.Board, string, float64, float64) bool) error {
	rec, err := c.readLayout(path)
	if err != nil {
		return err
	}
	if err := requireWidget(rec, id); err != nil {
		return err
	}
	width, opts, err := c.policy(cmd, o)
	if err != nil {
		return err
	}

	b := editBoard(rec, width, opts)
	if !apply(b, id, dx, dy) {
		printWarning("%s of %s rejected", name, id)
		return nil
	}

	rec.Widgets = b.Snapshot()
	out, err := writeLayout(rec, path, o.output)
	if err != nil {
		return err
	}
	w, _ := rec.Widgets.Find(id)
	printSuccess("%s %s to %s", pastTense(name), id, w.Position)
	printFile(out)
	return nil
}

func pastTense(op string) string {
	if op == "drag" {
		return "Moved"
	}
	return "Resized"
}

// =============================================================================
// compact
// =============================================================================

func (c *CLI) compactCommand() *cobra.Command {
	var (
		o    editOpts
		kind string
	)

	cmd := &cobra.Command{
		Use:   "compact [layout]",
		Short: "Pack widgets toward the top or left edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompact(cmd.Context(), args[0], kind, &o)
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", string(grid.CompactVertical), "compaction: vertical, horizontal")
	addOutputFlag(cmd, &o)

	return cmd
}

func (c *CLI) runCompact(ctx context.Context, path, kind string, o *editOpts) error {
	ct, err := grid.ParseCompactType(kind)
	if err != nil {
		return err
	}
	rec, err := c.readLayout(path)
	if err != nil {
		return err
	}

	prog := newProgress(loggerFromContext(ctx))
	b := editBoard(rec, c.config().Grid.Width, c.config().Options())
	b.SetCompact(ct)
	rec.Widgets = b.Snapshot()
	prog.done(fmt.Sprintf("Compacted %d widgets", len(rec.Widgets)))

	out, err := writeLayout(rec, path, o.output)
	if err != nil {
		return err
	}
	printSuccess("Compacted %s (%s)", rec.Name, kind)
	printFile(out)
	return nil
}

// =============================================================================
// lock / collapse / remove
// =============================================================================

func (c *CLI) lockCommand() *cobra.Command {
	return c.widgetCommand("lock", "Toggle whether a widget is locked in place", func(b *board.Board, id string) error {
		b.ToggleLock(id)
		return nil
	})
}

func (c *CLI) collapseCommand() *cobra.Command {
	return c.widgetCommand("collapse", "Toggle whether a widget is collapsed to its header", func(b *board.Board, id string) error {
		b.ToggleCollapse(id)
		return nil
	})
}

func (c *CLI) removeCommand() *cobra.Command {
	return c.widgetCommand("remove", "Remove a widget from the layout", func(b *board.Board, id string) error {
		if !b.Remove(id) {
			return gberr.New(gberr.ErrCodeConflict, "widget %q is locked", id)
		}
		return nil
	})
}

func (c *CLI) widgetCommand(name, short string, apply func(*board.Board, string) error) *cobra.Command {
	var o editOpts

	cmd := &cobra.Command{
		Use:               name + " [layout] [widget]",
		Short:             short,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeLayoutWidget,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, id := args[0], args[1]
			rec, err := c.readLayout(path)
			if err != nil {
				return err
			}
			if err := requireWidget(rec, id); err != nil {
				return err
			}

			b := editBoard(rec, c.config().Grid.Width, c.config().Options())
			if err := apply(b, id); err != nil {
				return err
			}
			rec.Widgets = b.Snapshot()

			out, err := writeLayout(rec, path, o.output)
			if err != nil {
				return err
			}
			printSuccess("%s %s", name, describeWidget(rec, id))
			printFile(out)
			return nil
		},
	}

	addOutputFlag(cmd, &o)
	return cmd
}

// describeWidget summarises a widget's flags after a toggle.
func describeWidget(rec *layout.Record, id string) string {
	w, ok := rec.Widgets.Find(id)
	if !ok {
		return id + " " + StyleDim.Render("(removed)")
	}
	return fmt.Sprintf("%s %s", id, StyleDim.Render(fmt.Sprintf("(locked=%t collapsed=%t)", w.Locked, w.Collapsed)))
}
