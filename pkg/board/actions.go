package board

import (
	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/observability"
)

// ToggleLock flips a widget's locked flag. It requires edit mode and
// reports false for unknown ids and while a gesture is active.
func (b *Board) ToggleLock(id string) bool {
	return b.toggle(id, true, grid.ToggleLock)
}

// ToggleCollapse flips a widget's collapsed flag. Collapsing is a viewing
// aid, so unlike every other mutation it is also allowed in view mode.
func (b *Board) ToggleCollapse(id string) bool {
	return b.toggle(id, false, grid.ToggleCollapse)
}

func (b *Board) toggle(id string, needsEdit bool, op func(grid.Snapshot, string) grid.Snapshot) bool {
	b.mu.Lock()
	if b.gesture != nil || b.current.Index(id) < 0 || (needsEdit && !b.canEdit(true)) {
		b.mu.Unlock()
		return false
	}
	b.current = op(b.current, id)
	snap := b.current.Clone()
	fn := b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return true
}

// Remove deletes a widget. It requires edit mode and refuses locked
// widgets. OnChange fires with the new layout, then OnRemove with the id.
func (b *Board) Remove(id string) bool {
	b.mu.Lock()
	if b.gesture != nil || !b.canEdit(true) {
		b.mu.Unlock()
		return false
	}
	next, ok := grid.Remove(b.current, id)
	if !ok {
		b.mu.Unlock()
		observability.Engine().OnRemove(id, false)
		return false
	}
	b.current = next
	snap := b.current.Clone()
	onChange, onRemove := b.onChange, b.onRemove
	b.mu.Unlock()

	observability.Engine().OnRemove(id, true)
	if onChange != nil {
		onChange(snap)
	}
	if onRemove != nil {
		onRemove(id)
	}
	return true
}

// Save captures the current layout as a new record with a fresh id and
// passes it to OnSave. The name must not be blank.
func (b *Board) Save(name, description string) (*layout.Record, error) {
	if err := gberr.ValidateName(name); err != nil {
		return nil, err
	}

	b.mu.Lock()
	rec := layout.New(name, b.current, b.cfg)
	rec.Description = description
	fn := b.onSave
	b.mu.Unlock()

	if fn != nil {
		fn(rec.Clone())
	}
	return rec, nil
}

// Load replaces the layout and grid settings with those of a saved record
// and fires OnLoad with its id. Any active gesture is abandoned. The
// container width and the state Reset returns to are kept.
func (b *Board) Load(rec *layout.Record) error {
	if rec == nil {
		return gberr.New(gberr.ErrCodeInvalidLayout, "layout is nil")
	}
	cfg := rec.Config(0)
	if err := cfg.Validate(); err != nil {
		return gberr.Wrap(gberr.ErrCodeInvalidLayout, err, "layout %s", rec.ID)
	}

	b.mu.Lock()
	b.gesture = nil
	b.current = rec.Widgets.Clone()
	b.cfg.Cols = cfg.Cols
	b.cfg.RowHeight = cfg.RowHeight
	b.cfg.Gap = cfg.Gap
	b.cfg.Padding = cfg.Padding
	fn := b.onLoad
	b.mu.Unlock()

	if fn != nil {
		fn(rec.ID)
	}
	return nil
}

// Reset restores the layout the board was created with and fires OnReset.
func (b *Board) Reset() {
	b.mu.Lock()
	b.gesture = nil
	b.current = b.initial.Clone()
	fn := b.onReset
	b.mu.Unlock()

	if fn != nil {
		fn()
	}
}
