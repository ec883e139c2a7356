package grid

import (
	"cmp"
	"math"
	"slices"
)

// Rect is a widget's pixel geometry relative to the container origin.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the right edge in pixels.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the bottom edge in pixels.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// ColumnWidth returns the pixel width of one column:
//
//	(Width - 2*Padding.X - Gap*(Cols-1)) / Cols
//
// clamped to MinColumnWidth. A non-positive column count is treated as one
// column.
func ColumnWidth(cfg Config) float64 {
	cols := max(cfg.Cols, 1)
	w := (cfg.Width - 2*cfg.Padding.X - cfg.Gap*float64(cols-1)) / float64(cols)
	if math.IsNaN(w) || w < MinColumnWidth {
		return MinColumnWidth
	}
	return w
}

// PixelRect returns the pixel rectangle a widget occupies. Collapsed widgets
// are pinned to HeaderHeight but keep their grid footprint.
func PixelRect(w Widget, cfg Config) Rect {
	colW := ColumnWidth(cfg)
	p := w.Position
	r := Rect{
		Left:   cfg.Padding.X + float64(p.X)*(colW+cfg.Gap),
		Top:    cfg.Padding.Y + float64(p.Y)*(cfg.RowHeight+cfg.Gap),
		Width:  float64(p.W)*colW + float64(p.W-1)*cfg.Gap,
		Height: float64(p.H)*cfg.RowHeight + float64(p.H-1)*cfg.Gap,
	}
	if w.Collapsed {
		r.Height = HeaderHeight
	}
	return r
}

// PixelRects returns the pixel rectangle of every widget, keyed by id.
func PixelRects(s Snapshot, cfg Config) map[string]Rect {
	out := make(map[string]Rect, len(s))
	for _, w := range s {
		out[w.ID] = PixelRect(w, cfg)
	}
	return out
}

// FromPixels converts a pixel rectangle back to the nearest grid position.
// It is the inverse of PixelRect for expanded widgets; a collapsed widget's
// height does not map back to its row span.
func FromPixels(r Rect, cfg Config) Position {
	colW := ColumnWidth(cfg)
	return Position{
		X: roundHalfUp((r.Left - cfg.Padding.X) / (colW + cfg.Gap)),
		Y: roundHalfUp((r.Top - cfg.Padding.Y) / (cfg.RowHeight + cfg.Gap)),
		W: roundHalfUp((r.Width + cfg.Gap) / (colW + cfg.Gap)),
		H: roundHalfUp((r.Height + cfg.Gap) / (cfg.RowHeight + cfg.Gap)),
	}
}

// SnapDelta converts a pointer displacement in pixels to a displacement in
// grid units, rounding half-up.
func SnapDelta(dx, dy float64, cfg Config) (cols, rows int) {
	colStep := ColumnWidth(cfg) + cfg.Gap
	rowStep := cfg.RowHeight + cfg.Gap
	if rowStep <= 0 {
		rowStep = MinColumnWidth
	}
	return roundHalfUp(dx / colStep), roundHalfUp(dy / rowStep)
}

// GridHeight returns the pixel height needed to show every widget, used
// when the container sizes itself to its content.
func GridHeight(s Snapshot, cfg Config) float64 {
	if len(s) == 0 {
		return 0
	}
	return float64(s.Bottom())*(cfg.RowHeight+cfg.Gap) + cfg.Padding.Y
}

// DefaultBreakpoints are the responsive breakpoints in container pixels.
var DefaultBreakpoints = map[string]float64{
	"lg":  1200,
	"md":  996,
	"sm":  768,
	"xs":  480,
	"xxs": 0,
}

// Breakpoint returns the name of the widest breakpoint whose minimum width
// fits in width. It falls back to "xxs" when none fits.
func Breakpoint(width float64, breakpoints map[string]float64) string {
	if breakpoints == nil {
		breakpoints = DefaultBreakpoints
	}
	names := make([]string, 0, len(breakpoints))
	for name := range breakpoints {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(breakpoints[b], breakpoints[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	for _, name := range names {
		if width >= breakpoints[name] {
			return name
		}
	}
	return "xxs"
}

// roundHalfUp rounds to the nearest integer with halves rounded toward
// positive infinity, so -2.5 rounds to -2 and 2.5 to 3.
func roundHalfUp(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Floor(v + 0.5))
}
