package board

import (
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/observability"
)

type gestureKind int

const (
	dragGesture gestureKind = iota
	resizeGesture
)

func (k gestureKind) String() string {
	if k == resizeGesture {
		return "resize"
	}
	return "drag"
}

// gesture is a drag or resize in progress.
type gesture struct {
	kind     gestureKind
	id       string
	start    grid.Snapshot
	accepted bool
}

// BeginDrag starts dragging a widget. It reports false, and starts nothing,
// when the board is not in edit mode, dragging is disabled, another gesture
// is active, or the widget is unknown, locked or not draggable.
func (b *Board) BeginDrag(id string) bool {
	return b.begin(dragGesture, id)
}

// BeginResize starts resizing a widget from its bottom-right corner. The
// same gates as BeginDrag apply, using the resize permissions.
func (b *Board) BeginResize(id string) bool {
	return b.begin(resizeGesture, id)
}

func (b *Board) begin(kind gestureKind, id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.gesture != nil {
		return false
	}
	w, ok := b.current.Find(id)
	if !ok {
		return false
	}
	switch kind {
	case dragGesture:
		if !b.canEdit(b.draggable) || !w.CanDrag() {
			return false
		}
	case resizeGesture:
		if !b.canEdit(b.resizable) || !w.CanResize() {
			return false
		}
	}

	b.gesture = &gesture{kind: kind, id: id, start: b.current}
	return true
}

// DragTo moves the dragged widget to the pixel displacement dx, dy measured
// from where the drag began. Compaction is deferred to EndDrag. It reports
// whether the position was accepted; a rejected position leaves the widget
// where the last accepted one put it.
func (b *Board) DragTo(dx, dy float64) bool {
	return b.moveTo(dragGesture, dx, dy)
}

// ResizeTo resizes the widget to the pixel displacement dx, dy of the
// resize handle from where the resize began.
func (b *Board) ResizeTo(dx, dy float64) bool {
	return b.moveTo(resizeGesture, dx, dy)
}

func (b *Board) moveTo(kind gestureKind, dx, dy float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	g := b.gesture
	if g == nil || g.kind != kind {
		return false
	}

	opts := b.opts
	opts.Compact = grid.CompactNone

	var next grid.Snapshot
	var ok bool
	if kind == dragGesture {
		next, ok = grid.Drag(g.start, g.id, dx, dy, b.cfg, opts)
	} else {
		next, ok = grid.Resize(g.start, g.id, dx, dy, b.cfg, opts)
	}
	if ok {
		b.current = next
		g.accepted = true
	}
	return ok
}

// EndDrag finishes the drag: the configured compaction runs and OnChange
// fires. It reports whether any position of the gesture was accepted; when
// none was the layout is left as it was before BeginDrag.
func (b *Board) EndDrag() bool {
	return b.end(dragGesture)
}

// EndResize finishes the resize the same way EndDrag finishes a drag.
func (b *Board) EndResize() bool {
	return b.end(resizeGesture)
}

func (b *Board) end(kind gestureKind) bool {
	b.mu.Lock()
	g := b.gesture
	if g == nil || g.kind != kind {
		b.mu.Unlock()
		return false
	}
	b.gesture = nil

	if !g.accepted {
		b.mu.Unlock()
		observability.Engine().OnRejected(kind.String(), g.id)
		return false
	}

	from, _ := g.start.Find(g.id)
	to, _ := b.current.Find(g.id)
	b.compactLocked()
	snap := b.current.Clone()
	fn := b.onChange
	b.mu.Unlock()

	if kind == dragGesture {
		observability.Engine().OnMove(g.id, to.Position.X-from.Position.X, to.Position.Y-from.Position.Y)
	} else {
		observability.Engine().OnResize(g.id, to.Position.W-from.Position.W, to.Position.H-from.Position.H)
	}
	if fn != nil {
		fn(snap)
	}
	return true
}

// Cancel abandons the active gesture and restores the layout it started
// from.
func (b *Board) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gesture != nil {
		b.current = b.gesture.start
		b.gesture = nil
	}
}

// Active returns the id of the widget being dragged or resized, or "".
func (b *Board) Active() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gesture == nil {
		return ""
	}
	return b.gesture.id
}

// Drag applies a complete drag gesture in one call.
func (b *Board) Drag(id string, dx, dy float64) bool {
	if !b.BeginDrag(id) {
		return false
	}
	b.DragTo(dx, dy)
	return b.EndDrag()
}

// Resize applies a complete resize gesture in one call.
func (b *Board) Resize(id string, dx, dy float64) bool {
	if !b.BeginResize(id) {
		return false
	}
	b.ResizeTo(dx, dy)
	return b.EndResize()
}
