// Package layout defines the persisted form of a dashboard layout.
//
// A [Record] pairs a widget snapshot with the grid settings it was arranged
// under, plus identity and timestamps. Records are what the CLI reads and
// writes as files, what the stores persist, and what the HTTP API serves.
//
// The container width is deliberately absent: it is a property of whoever
// renders the layout, so [Record.Config] takes it as an argument.
package layout

import (
	"time"

	"github.com/google/uuid"

	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
)

// Record is a saved layout.
type Record struct {
	ID          string        `json:"id" yaml:"id" bson:"_id"`
	Name        string        `json:"name" yaml:"name" bson:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
	Widgets     grid.Snapshot `json:"widgets" yaml:"widgets" bson:"widgets"`
	Cols        int           `json:"cols" yaml:"cols" bson:"cols"`
	RowHeight   float64       `json:"row_height" yaml:"row_height" bson:"row_height"`
	Gap         float64       `json:"gap" yaml:"gap" bson:"gap"`
	Padding     grid.Padding  `json:"padding" yaml:"padding" bson:"padding"`
	CreatedAt   time.Time     `json:"created_at" yaml:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" yaml:"updated_at" bson:"updated_at"`
	IsDefault   bool          `json:"is_default,omitempty" yaml:"is_default,omitempty" bson:"is_default,omitempty"`
}

// New creates a record with a fresh id from a snapshot and the grid settings
// in cfg. The snapshot is copied.
func New(name string, s grid.Snapshot, cfg grid.Config) *Record {
	now := time.Now().UTC()
	return &Record{
		ID:        uuid.NewString(),
		Name:      name,
		Widgets:   s.Clone(),
		Cols:      cfg.Cols,
		RowHeight: cfg.RowHeight,
		Gap:       cfg.Gap,
		Padding:   cfg.Padding,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Config returns the grid configuration of the record for a container of
// the given pixel width.
func (r *Record) Config(width float64) grid.Config {
	return grid.Config{
		Cols:      r.Cols,
		RowHeight: r.RowHeight,
		Gap:       r.Gap,
		Padding:   r.Padding,
		Width:     width,
	}
}

// Touch stamps UpdatedAt with the current time, and CreatedAt too if it was
// never set.
func (r *Record) Touch() {
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Widgets = r.Widgets.Clone()
	return &c
}


// Validate checks that a record is fit for storage.
func Validate(r *Record) error {
	if r == nil {
		return gberr.New(gberr.ErrCodeInvalidLayout, "layout is nil")
	}
	if err := gberr.ValidateID(r.ID); err != nil {
		return gberr.Wrap(gberr.ErrCodeInvalidLayout, err, "layout id")
	}
	if err := gberr.ValidateName(r.Name); err != nil {
		return gberr.Wrap(gberr.ErrCodeInvalidLayout, err, "layout %s name", r.ID)
	}
	if err := r.Config(0).Validate(); err != nil {
		return gberr.Wrap(gberr.ErrCodeInvalidLayout, err, "layout %s", r.ID)
	}
	if err := r.Widgets.Validate(r.Cols); err != nil {
		return gberr.Wrap(gberr.ErrCodeInvalidLayout, err, "layout %s", r.ID)
	}
	return nil
}
