package grid

import (
	"fmt"
	"slices"

	gberr "github.com/matzehuels/gridboard/pkg/errors"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultCols is the default number of grid columns.
	DefaultCols = 12

	// DefaultRowHeight is the default row height in pixels.
	DefaultRowHeight = 100.0

	// DefaultGap is the default gap between cells in pixels.
	DefaultGap = 16.0

	// HeaderHeight is the pixel height of a collapsed widget.
	HeaderHeight = 48.0

	// MinColumnWidth is the lower bound applied to computed column widths so
	// degenerate containers still produce usable geometry.
	MinColumnWidth = 1.0
)

// =============================================================================
// Position
// =============================================================================

// Position is a widget's placement in grid units.
type Position struct {
	X int `json:"x" yaml:"x" bson:"x"`
	Y int `json:"y" yaml:"y" bson:"y"`
	W int `json:"w" yaml:"w" bson:"w"`
	H int `json:"h" yaml:"h" bson:"h"`
}

// Right returns the first column to the right of the position (exclusive).
func (p Position) Right() int { return p.X + p.W }

// Bottom returns the first row below the position (exclusive).
func (p Position) Bottom() int { return p.Y + p.H }

// String formats the position as "(x,y,w,h)".
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", p.X, p.Y, p.W, p.H)
}

// =============================================================================
// Widget
// =============================================================================

// Widget is one occupant of the grid.
//
// Size bounds are optional: a zero MinW/MinH means 1, a zero MaxW means the
// column count and a zero MaxH means unbounded. Draggable and Resizable are
// nil when the widget does not override the board-level setting.
type Widget struct {
	ID       string   `json:"id" yaml:"id" bson:"id"`
	Type     string   `json:"type,omitempty" yaml:"type,omitempty" bson:"type,omitempty"`
	Title    string   `json:"title,omitempty" yaml:"title,omitempty" bson:"title,omitempty"`
	Position Position `json:"position" yaml:"position" bson:"position"`

	MinW int `json:"min_w,omitempty" yaml:"min_w,omitempty" bson:"min_w,omitempty"`
	MinH int `json:"min_h,omitempty" yaml:"min_h,omitempty" bson:"min_h,omitempty"`
	MaxW int `json:"max_w,omitempty" yaml:"max_w,omitempty" bson:"max_w,omitempty"`
	MaxH int `json:"max_h,omitempty" yaml:"max_h,omitempty" bson:"max_h,omitempty"`

	Locked    bool  `json:"locked,omitempty" yaml:"locked,omitempty" bson:"locked,omitempty"`
	Collapsed bool  `json:"collapsed,omitempty" yaml:"collapsed,omitempty" bson:"collapsed,omitempty"`
	Draggable *bool `json:"draggable,omitempty" yaml:"draggable,omitempty" bson:"draggable,omitempty"`
	Resizable *bool `json:"resizable,omitempty" yaml:"resizable,omitempty" bson:"resizable,omitempty"`

	// Payload is opaque display data carried alongside the widget.
	Payload map[string]any `json:"payload,omitempty" yaml:"payload,omitempty" bson:"payload,omitempty"`
}

// CanDrag reports whether the widget may be moved.
func (w Widget) CanDrag() bool {
	return !w.Locked && (w.Draggable == nil || *w.Draggable)
}

// CanResize reports whether the widget may be resized. Collapsed widgets
// show only their header, so they cannot be resized until expanded.
func (w Widget) CanResize() bool {
	return !w.Locked && !w.Collapsed && (w.Resizable == nil || *w.Resizable)
}

// minW returns the effective minimum width.
func (w Widget) minW() int {
	if w.MinW > 0 {
		return w.MinW
	}
	return 1
}

// minH returns the effective minimum height.
func (w Widget) minH() int {
	if w.MinH > 0 {
		return w.MinH
	}
	return 1
}

// maxW returns the effective maximum width for a grid of cols columns.
func (w Widget) maxW(cols int) int {
	if w.MaxW > 0 {
		return w.MaxW
	}
	return cols
}

// clone returns a deep copy of the widget.
func (w Widget) clone() Widget {
	if w.Draggable != nil {
		v := *w.Draggable
		w.Draggable = &v
	}
	if w.Resizable != nil {
		v := *w.Resizable
		w.Resizable = &v
	}
	if w.Payload != nil {
		p := make(map[string]any, len(w.Payload))
		for k, v := range w.Payload {
			p[k] = v
		}
		w.Payload = p
	}
	return w
}

// Bool returns a pointer to b, for populating Draggable and Resizable.
func Bool(b bool) *bool { return &b }

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot is the ordered set of widgets at one instant. It is the unit that
// is saved, restored and handed to change callbacks.
type Snapshot []Widget

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for i, w := range s {
		out[i] = w.clone()
	}
	return out
}

// Index returns the position of the widget with the given id, or -1.
func (s Snapshot) Index(id string) int {
	return slices.IndexFunc(s, func(w Widget) bool { return w.ID == id })
}

// Find returns the widget with the given id.
func (s Snapshot) Find(id string) (Widget, bool) {
	if i := s.Index(id); i >= 0 {
		return s[i], true
	}
	return Widget{}, false
}

// Bottom returns the first empty row below every widget.
func (s Snapshot) Bottom() int {
	bottom := 0
	for _, w := range s {
		bottom = max(bottom, w.Position.Bottom())
	}
	return bottom
}

// Positions returns the widget positions keyed by id.
func (s Snapshot) Positions() map[string]Position {
	out := make(map[string]Position, len(s))
	for _, w := range s {
		out[w.ID] = w.Position
	}
	return out
}

// Validate checks the snapshot against the layout invariants for a grid of
// cols columns: unique non-empty ids, non-negative coordinates, widths and
// heights of at least one unit within their bounds, and no widget extending
// past the last column. A widget flush with the last column may be narrower
// than MinW, since resizing clips at the grid edge. Overlaps are not checked; see [Snapshot.Overlapping].
func (s Snapshot) Validate(cols int) error {
	seen := make(map[string]bool, len(s))
	for i, w := range s {
		if w.ID == "" {
			return gberr.New(gberr.ErrCodeInvalidWidget, "widget %d has no id", i)
		}
		if seen[w.ID] {
			return gberr.New(gberr.ErrCodeInvalidWidget, "duplicate widget id %q", w.ID)
		}
		seen[w.ID] = true

		p := w.Position
		switch {
		case p.X < 0 || p.Y < 0:
			return gberr.New(gberr.ErrCodeInvalidWidget, "widget %q has negative position %s", w.ID, p)
		case p.W < 1 || p.W > w.maxW(cols) || (p.W < w.minW() && p.Right() < cols):
			return gberr.New(gberr.ErrCodeInvalidWidget, "widget %q width %d outside [%d,%d]", w.ID, p.W, w.minW(), w.maxW(cols))
		case p.H < w.minH() || (w.MaxH > 0 && p.H > w.MaxH):
			return gberr.New(gberr.ErrCodeInvalidWidget, "widget %q height %d outside bounds", w.ID, p.H)
		case p.Right() > cols:
			return gberr.New(gberr.ErrCodeInvalidWidget, "widget %q extends past column %d", w.ID, cols)
		}
	}
	return nil
}

// Overlapping returns the ids of every pair of widgets whose rectangles
// share area, in snapshot order.
func (s Snapshot) Overlapping() [][2]string {
	var pairs [][2]string
	for i := range s {
		for j := i + 1; j < len(s); j++ {
			if Overlaps(s[i].Position, s[j].Position) {
				pairs = append(pairs, [2]string{s[i].ID, s[j].ID})
			}
		}
	}
	return pairs
}

// =============================================================================
// Config
// =============================================================================

// Padding is the outer container padding in pixels.
type Padding struct {
	X float64 `json:"x" yaml:"x" bson:"x"`
	Y float64 `json:"y" yaml:"y" bson:"y"`
}

// Config is the grid configuration for one layout computation.
// Width is the measured container width in pixels.
type Config struct {
	Cols      int     `json:"cols" yaml:"cols" bson:"cols"`
	RowHeight float64 `json:"row_height" yaml:"row_height" bson:"row_height"`
	Gap       float64 `json:"gap" yaml:"gap" bson:"gap"`
	Padding   Padding `json:"padding" yaml:"padding" bson:"padding"`
	Width     float64 `json:"width" yaml:"width" bson:"width"`
}

// DefaultConfig returns a 12-column grid with 100px rows and 16px gaps
// in a 1200px container.
func DefaultConfig() Config {
	return Config{
		Cols:      DefaultCols,
		RowHeight: DefaultRowHeight,
		Gap:       DefaultGap,
		Width:     1200,
	}
}

// Validate reports configuration values the engine cannot work with.
func (c Config) Validate() error {
	if c.Cols <= 0 {
		return gberr.New(gberr.ErrCodeInvalidConfig, "cols must be positive, got %d", c.Cols)
	}
	if c.RowHeight <= 0 {
		return gberr.New(gberr.ErrCodeInvalidConfig, "row height must be positive, got %g", c.RowHeight)
	}
	if c.Gap < 0 {
		return gberr.New(gberr.ErrCodeInvalidConfig, "gap cannot be negative, got %g", c.Gap)
	}
	if c.Padding.X < 0 || c.Padding.Y < 0 {
		return gberr.New(gberr.ErrCodeInvalidConfig, "padding cannot be negative")
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// CompactType selects the compaction axis. The zero value disables
// compaction.
type CompactType string

// Compaction modes.
const (
	CompactNone       CompactType = ""
	CompactVertical   CompactType = "vertical"
	CompactHorizontal CompactType = "horizontal"
)

// ParseCompactType parses a compaction mode name. "none" and the empty
// string both disable compaction.
func ParseCompactType(s string) (CompactType, error) {
	switch s {
	case "", "none", "off":
		return CompactNone, nil
	case string(CompactVertical):
		return CompactVertical, nil
	case string(CompactHorizontal):
		return CompactHorizontal, nil
	}
	return CompactNone, gberr.New(gberr.ErrCodeInvalidInput, "unknown compact type %q (want vertical, horizontal or none)", s)
}

// Options holds the policy flags for drag and resize.
type Options struct {
	PreventCollision bool        `json:"prevent_collision" yaml:"prevent_collision"`
	Compact          CompactType `json:"compact" yaml:"compact"`
}
