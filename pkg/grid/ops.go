package grid

// Overlaps reports whether two positions share any area. Rectangles that
// only touch along an edge do not overlap.
func Overlaps(a, b Position) bool {
	return !(a.Right() <= b.X ||
		b.Right() <= a.X ||
		a.Bottom() <= b.Y ||
		b.Bottom() <= a.Y)
}

// Collides reports whether p overlaps any widget in s other than the one
// with the given id.
func Collides(s Snapshot, id string, p Position) bool {
	for _, w := range s {
		if w.ID != id && Overlaps(w.Position, p) {
			return true
		}
	}
	return false
}

// Drag moves a widget by a pointer displacement measured in pixels since the
// drag started. s must be the snapshot captured at drag start so repeated
// pointer events do not accumulate rounding.
//
// The new column is clamped to [0, cols-w] and the new row to [0, ∞). With
// PreventCollision the move is rejected when the target overlaps another
// widget. An accepted move is followed by a compaction pass when
// opts.Compact is set.
//
// The boolean reports whether the move was applied. Locked widgets, widgets
// that are not draggable and unknown ids return s unchanged and false.
func Drag(s Snapshot, id string, dx, dy float64, cfg Config, opts Options) (Snapshot, bool) {
	i := s.Index(id)
	if i < 0 || !s[i].CanDrag() {
		return s, false
	}

	dc, dr := SnapDelta(dx, dy, cfg)
	p := s[i].Position
	p.X = clamp(p.X+dc, 0, max(cfg.Cols-p.W, 0))
	p.Y = max(0, p.Y+dr)

	return place(s, i, p, cfg, opts)
}

// Resize changes a widget's size by a pointer displacement measured in
// pixels since the resize started. s must be the snapshot captured at resize
// start.
//
// Width is clamped to [MinW, MaxW] (defaults 1 and cols) and height to
// [MinH, MaxH] (defaults 1 and unbounded), max bound first. A width that
// would push the right edge past the last column is cut back to cols-x; the
// widget's column never changes. With PreventCollision a resize that would
// overlap another widget is rejected, the same policy Drag applies.
//
// Locked widgets, widgets that are not resizable and unknown ids return s
// unchanged and false.
func Resize(s Snapshot, id string, dx, dy float64, cfg Config, opts Options) (Snapshot, bool) {
	i := s.Index(id)
	if i < 0 || !s[i].CanResize() {
		return s, false
	}

	w := s[i]
	dc, dr := SnapDelta(dx, dy, cfg)
	p := w.Position
	p.W = max(w.minW(), min(w.maxW(cfg.Cols), p.W+dc))
	if w.MaxH > 0 {
		p.H = max(w.minH(), min(w.MaxH, p.H+dr))
	} else {
		p.H = max(w.minH(), p.H+dr)
	}
	if p.Right() > cfg.Cols {
		p.W = cfg.Cols - p.X
	}

	return place(s, i, p, cfg, opts)
}

// place applies a candidate position to the widget at index i, enforcing
// the collision policy and compacting afterward.
func place(s Snapshot, i int, p Position, cfg Config, opts Options) (Snapshot, bool) {
	if opts.PreventCollision && Collides(s, s[i].ID, p) {
		return s, false
	}

	out := s.Clone()
	out[i].Position = p
	if opts.Compact != CompactNone {
		out = Compact(out, opts.Compact, cfg.Cols)
	}
	return out, true
}

// ToggleLock flips the Locked flag of the widget with the given id. Unknown
// ids are a no-op.
func ToggleLock(s Snapshot, id string) Snapshot {
	return update(s, id, func(w *Widget) { w.Locked = !w.Locked })
}

// ToggleCollapse flips the Collapsed flag of the widget with the given id.
// A collapsed widget keeps its grid footprint. Unknown ids are a no-op.
func ToggleCollapse(s Snapshot, id string) Snapshot {
	return update(s, id, func(w *Widget) { w.Collapsed = !w.Collapsed })
}

// Remove drops the widget with the given id from the snapshot. Locked
// widgets and unknown ids are left in place and reported as not removed.
func Remove(s Snapshot, id string) (Snapshot, bool) {
	i := s.Index(id)
	if i < 0 || s[i].Locked {
		return s, false
	}
	out := make(Snapshot, 0, len(s)-1)
	for j, w := range s {
		if j != i {
			out = append(out, w.clone())
		}
	}
	return out, true
}

func update(s Snapshot, id string, fn func(*Widget)) Snapshot {
	i := s.Index(id)
	if i < 0 {
		return s
	}
	out := s.Clone()
	fn(&out[i])
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
