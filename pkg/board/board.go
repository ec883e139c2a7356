// Package board hosts a single editable dashboard layout.
//
// The grid engine in package grid is pure: every operation takes a snapshot
// and returns a new one. A [Board] is the stateful side of that contract. It
// owns the current snapshot, the edit mode, the board-wide permissions and
// the in-flight pointer gesture, and it notifies callers through callbacks
// when the layout changes.
//
// Drags and resizes are modelled as gestures. [Board.BeginDrag] captures the
// snapshot at gesture start, [Board.DragTo] recomputes the position from that
// snapshot for every pointer event, and [Board.EndDrag] applies compaction
// and reports the change. Resizes follow the same shape.
//
// A Board is safe for concurrent use. Callbacks run after the board's lock
// is released, so they may call back into the board.
package board

import (
	"sync"
	"time"

	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/observability"
)

// Mode is the interaction mode of a board.
type Mode int

const (
	// View renders the layout without edit affordances.
	View Mode = iota
	// Edit enables dragging, resizing and removal.
	Edit
)

// String returns "view" or "edit".
func (m Mode) String() string {
	if m == Edit {
		return "edit"
	}
	return "view"
}

// Option configures a Board.
type Option func(*Board)

// WithMode sets the starting mode. Edit is ignored when editing is not
// allowed.
func WithMode(m Mode) Option { return func(b *Board) { b.mode = m } }

// WithAllowEdit controls whether the board may ever enter edit mode.
func WithAllowEdit(v bool) Option { return func(b *Board) { b.allowEdit = v } }

// WithDraggable enables or disables drag gestures board-wide. Widgets can
// still opt out individually.
func WithDraggable(v bool) Option { return func(b *Board) { b.draggable = v } }

// WithResizable enables or disables resize gestures board-wide.
func WithResizable(v bool) Option { return func(b *Board) { b.resizable = v } }

// OnChange is called with a copy of the layout after every accepted
// mutation.
func OnChange(fn func(grid.Snapshot)) Option { return func(b *Board) { b.onChange = fn } }

// OnRemove is called with the id of a removed widget, after OnChange.
func OnRemove(fn func(id string)) Option { return func(b *Board) { b.onRemove = fn } }

// OnSave receives the record produced by [Board.Save].
func OnSave(fn func(*layout.Record)) Option { return func(b *Board) { b.onSave = fn } }

// OnLoad is called with the id of a record passed to [Board.Load].
func OnLoad(fn func(id string)) Option { return func(b *Board) { b.onLoad = fn } }

// OnReset is called after [Board.Reset].
func OnReset(fn func()) Option { return func(b *Board) { b.onReset = fn } }

// Board is a stateful host for one layout snapshot.
type Board struct {
	mu sync.Mutex

	cfg     grid.Config
	opts    grid.Options
	current grid.Snapshot
	initial grid.Snapshot

	mode      Mode
	allowEdit bool
	draggable bool
	resizable bool

	gesture *gesture

	onChange func(grid.Snapshot)
	onRemove func(string)
	onSave   func(*layout.Record)
	onLoad   func(string)
	onReset  func()
}

// New creates a board showing s. The snapshot is copied and kept as the
// state Reset returns to. Boards start in view mode with editing, dragging
// and resizing allowed.
func New(s grid.Snapshot, cfg grid.Config, opts grid.Options, options ...Option) *Board {
	b := &Board{
		cfg:       cfg,
		opts:      opts,
		current:   s.Clone(),
		initial:   s.Clone(),
		allowEdit: true,
		draggable: true,
		resizable: true,
	}
	for _, o := range options {
		o(b)
	}
	if !b.allowEdit {
		b.mode = View
	}
	return b
}

// Snapshot returns a copy of the current layout.
func (b *Board) Snapshot() grid.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current.Clone()
}

// Config returns the grid configuration.
func (b *Board) Config() grid.Config {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg
}

// Options returns the drag and resize policy.
func (b *Board) Options() grid.Options {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opts
}

// SetWidth records a new container width, as after a window resize.
func (b *Board) SetWidth(width float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.Width = width
}

// SetPreventCollision switches collision rejection on or off.
func (b *Board) SetPreventCollision(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opts.PreventCollision = v
}

// Mode returns the current interaction mode.
func (b *Board) Mode() Mode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mode
}

// SetMode switches between view and edit mode. Entering edit mode is refused
// when the board does not allow editing. Leaving edit mode cancels any
// gesture in progress.
func (b *Board) SetMode(m Mode) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.setModeLocked(m)
}

// ToggleEdit flips between view and edit mode and reports whether the mode
// changed.
func (b *Board) ToggleEdit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mode == Edit {
		return b.setModeLocked(View)
	}
	return b.setModeLocked(Edit)
}

func (b *Board) setModeLocked(m Mode) bool {
	if m == Edit && !b.allowEdit {
		return false
	}
	if m == View && b.gesture != nil {
		b.current = b.gesture.start
		b.gesture = nil
	}
	b.mode = m
	return true
}

// Height returns the pixel height of the laid-out grid.
func (b *Board) Height() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return grid.GridHeight(b.current, b.cfg)
}

// Rects returns the pixel rectangle of every widget, keyed by id.
func (b *Board) Rects() map[string]grid.Rect {
	b.mu.Lock()
	defer b.mu.Unlock()
	return grid.PixelRects(b.current, b.cfg)
}

// Breakpoint returns the responsive breakpoint name for the current width.
func (b *Board) Breakpoint() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return grid.Breakpoint(b.cfg.Width, nil)
}

// compactLocked runs the configured compaction over the current snapshot.
func (b *Board) compactLocked() {
	if b.opts.Compact == grid.CompactNone {
		return
	}
	start := time.Now()
	b.current = grid.Compact(b.current, b.opts.Compact, b.cfg.Cols)
	observability.Engine().OnCompact(string(b.opts.Compact), len(b.current), time.Since(start))
}

// SetCompact changes the compaction mode. In edit mode the layout is
// compacted with it straight away and SetCompact reports true. In view mode
// only the policy changes; it applies to the next edit.
func (b *Board) SetCompact(kind grid.CompactType) bool {
	b.mu.Lock()
	b.opts.Compact = kind
	if b.gesture != nil || !b.canEdit(true) {
		b.mu.Unlock()
		return false
	}
	before := b.current
	b.compactLocked()
	changed := !sameLayout(before, b.current)
	snap := b.current.Clone()
	fn := b.onChange
	b.mu.Unlock()

	if changed && fn != nil {
		fn(snap)
	}
	return true
}

// canEdit reports whether pointer edits of the given kind are allowed.
func (b *Board) canEdit(board bool) bool {
	return b.allowEdit && b.mode == Edit && board
}

func sameLayout(a, b grid.Snapshot) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Position != b[i].Position ||
			a[i].Locked != b[i].Locked || a[i].Collapsed != b[i].Collapsed {
			return false
		}
	}
	return true
}
