package store

import (
	"context"
	"time"

	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/observability"
)

// instrumented reports store operations to observability.Store().
type instrumented struct {
	inner   Store
	backend string
}

// Instrument wraps s so Get, Save and Delete report their duration and
// outcome to the observability hooks under the backend name.
func Instrument(s Store, backend string) Store {
	return &instrumented{inner: s, backend: backend}
}

// Unwrap returns the wrapped store.
func (i *instrumented) Unwrap() Store { return i.inner }

func (i *instrumented) Get(ctx context.Context, id string) (*layout.Record, error) {
	start := time.Now()
	rec, err := i.inner.Get(ctx, id)
	observability.Store().OnLoad(ctx, i.backend, id, time.Since(start), err)
	return rec, err
}

func (i *instrumented) List(ctx context.Context) ([]*layout.Record, error) {
	return i.inner.List(ctx)
}

func (i *instrumented) Save(ctx context.Context, rec *layout.Record) error {
	start := time.Now()
	err := i.inner.Save(ctx, rec)
	id := ""
	if rec != nil {
		id = rec.ID
	}
	observability.Store().OnSave(ctx, i.backend, id, time.Since(start), err)
	return err
}

func (i *instrumented) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := i.inner.Delete(ctx, id)
	observability.Store().OnDelete(ctx, i.backend, id, time.Since(start), err)
	return err
}

func (i *instrumented) Close() error { return i.inner.Close() }
