package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"

	"github.com/matzehuels/gridboard/pkg/config"
	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/observability"
)

// recordOpts tolerates millisecond timestamp precision and nil/empty slices,
// which differ between backends.
var recordOpts = cmp.Options{
	cmpopts.EquateApproxTime(time.Millisecond),
	cmpopts.EquateEmpty(),
}

// newRecord uses non-zero padding so every backend has to round-trip it.
func newRecord(name string) *layout.Record {
	cfg := grid.DefaultConfig()
	cfg.Padding = grid.Padding{X: 8, Y: 4}
	return layout.New(name, grid.Snapshot{
		{ID: "sales", Title: "Sales", Position: grid.Position{X: 0, Y: 0, W: 6, H: 2}},
		{ID: "notes", Position: grid.Position{X: 6, Y: 0, W: 6, H: 1}, Collapsed: true,
			Payload: map[string]any{"text": "hello"}},
	}, cfg)
}

// testStore runs the behaviour every backend must share.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, uuid.NewString())
		if !gberr.Is(err, gberr.ErrCodeLayoutNotFound) {
			t.Errorf("Get(missing) error = %v, want LAYOUT_NOT_FOUND", err)
		}
	})

	t.Run("save and get", func(t *testing.T) {
		rec := newRecord("first")
		rec.UpdatedAt = time.Time{}
		if err := s.Save(ctx, rec); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		if rec.UpdatedAt.IsZero() {
			t.Error("Save() did not stamp UpdatedAt")
		}

		got, err := s.Get(ctx, rec.ID)
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if diff := cmp.Diff(rec, got, recordOpts); diff != "" {
			t.Errorf("Get() mismatch (-saved +got):\n%s", diff)
		}
	})

	t.Run("save rejects invalid", func(t *testing.T) {
		rec := newRecord("")
		if err := s.Save(ctx, rec); !gberr.Is(err, gberr.ErrCodeInvalidLayout) {
			t.Errorf("Save(no name) error = %v, want INVALID_LAYOUT", err)
		}
		if _, err := s.Get(ctx, rec.ID); !gberr.IsNotFound(err) {
			t.Error("invalid record was stored")
		}
	})

	t.Run("upsert and list order", func(t *testing.T) {
		a := newRecord("a")
		b := newRecord("b")
		if err := s.Save(ctx, a); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
		if err := s.Save(ctx, b); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)

		a.Widgets[0].Position.Y = 3
		a.Name = "a2"
		created := a.CreatedAt
		if err := s.Save(ctx, a); err != nil {
			t.Fatal(err)
		}

		got, err := s.Get(ctx, a.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != "a2" || got.Widgets[0].Position.Y != 3 {
			t.Errorf("upsert not applied: %+v", got)
		}
		if !got.CreatedAt.Round(time.Millisecond).Equal(created.Round(time.Millisecond)) {
			t.Errorf("CreatedAt changed on update: %v -> %v", created, got.CreatedAt)
		}

		list, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		pos := map[string]int{}
		for i, r := range list {
			pos[r.ID] = i
		}
		ia, okA := pos[a.ID]
		ib, okB := pos[b.ID]
		if !okA || !okB {
			t.Fatalf("List() missing saved records")
		}
		if ia > ib {
			t.Errorf("List() order: updated a at %d after b at %d", ia, ib)
		}
		for i := 1; i < len(list); i++ {
			if list[i].UpdatedAt.After(list[i-1].UpdatedAt) {
				t.Errorf("List() not sorted at %d", i)
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := newRecord("doomed")
		if err := s.Save(ctx, rec); err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, rec.ID); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if _, err := s.Get(ctx, rec.ID); !gberr.IsNotFound(err) {
			t.Errorf("Get after Delete error = %v", err)
		}
		if err := s.Delete(ctx, rec.ID); err != nil {
			t.Errorf("second Delete() error: %v", err)
		}
	})

	t.Run("returned records are copies", func(t *testing.T) {
		rec := newRecord("copy")
		if err := s.Save(ctx, rec); err != nil {
			t.Fatal(err)
		}
		got, _ := s.Get(ctx, rec.ID)
		got.Widgets[0].Title = "mutated"

		again, _ := s.Get(ctx, rec.ID)
		if again.Widgets[0].Title != "Sales" {
			t.Error("mutating a returned record changed the store")
		}
	})
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	testStore(t, s)
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	ctx := context.Background()

	if _, err := s.Get(ctx, "../secrets"); !gberr.Is(err, gberr.ErrCodeInvalidInput) {
		t.Errorf("Get(../secrets) error = %v, want INVALID_INPUT", err)
	}
	if err := s.Delete(ctx, "a/../../b"); !gberr.Is(err, gberr.ErrCodeInvalidInput) {
		t.Errorf("Delete(traversal) error = %v, want INVALID_INPUT", err)
	}
}

func TestFileStoreSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	ctx := context.Background()

	if err := s.Save(ctx, newRecord("real")); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0600)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0600)

	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "real" {
		t.Errorf("List() = %d records", len(list))
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "db", "layouts.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestSQLiteStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "layouts.db")

	s, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	rec := newRecord("durable")
	rec.IsDefault = true
	if err := s.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get() after reopen: %v", err)
	}
	if diff := cmp.Diff(rec, got, recordOpts); diff != "" {
		t.Errorf("reopened record (-want +got):\n%s", diff)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("GRIDBOARD_TEST_REDIS")
	if addr == "" {
		t.Skip("GRIDBOARD_TEST_REDIS not set")
	}
	s, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisStore() error: %v", err)
	}
	defer s.Close()
	testStore(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("GRIDBOARD_TEST_MONGO")
	if uri == "" {
		t.Skip("GRIDBOARD_TEST_MONGO not set")
	}
	db := "gridboard_test_" + uuid.NewString()[:8]
	s, err := NewMongoStore(context.Background(), uri, db)
	if err != nil {
		t.Fatalf("NewMongoStore() error: %v", err)
	}
	defer func() {
		s.client.Database(db).Drop(context.Background())
		s.Close()
	}()
	testStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  config.Store
	}{
		{"memory", config.Store{Backend: config.BackendMemory}},
		{"file", config.Store{Backend: config.BackendFile, Path: filepath.Join(dir, "files")}},
		{"sqlite", config.Store{Backend: config.BackendSQLite, Path: filepath.Join(dir, "l.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg)
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			defer s.Close()
			if err := s.Save(ctx, newRecord("opened")); err != nil {
				t.Errorf("Save() error: %v", err)
			}
		})
	}

	if _, err := Open(ctx, config.Store{Backend: "etcd"}); !gberr.Is(err, gberr.ErrCodeInvalidConfig) {
		t.Errorf("Open(etcd) error = %v, want INVALID_CONFIG", err)
	}
}

type recordingHooks struct {
	observability.NoopStoreHooks
	events []string
}

func (h *recordingHooks) OnSave(_ context.Context, backend, _ string, _ time.Duration, err error) {
	h.events = append(h.events, backend+":save:"+outcome(err))
}

func (h *recordingHooks) OnLoad(_ context.Context, backend, _ string, _ time.Duration, err error) {
	h.events = append(h.events, backend+":load:"+outcome(err))
}

func (h *recordingHooks) OnDelete(_ context.Context, backend, _ string, _ time.Duration, err error) {
	h.events = append(h.events, backend+":delete:"+outcome(err))
}

func outcome(err error) string {
	if err != nil {
		return "err"
	}
	return "ok"
}

func TestInstrument(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	s := Instrument(NewMemoryStore(), "memory")
	rec := newRecord("watched")

	s.Save(ctx, rec)
	s.Get(ctx, rec.ID)
	s.Get(ctx, "missing")
	s.Delete(ctx, rec.ID)
	s.List(ctx)

	want := []string{"memory:save:ok", "memory:load:ok", "memory:load:err", "memory:delete:ok"}
	if diff := cmp.Diff(want, hooks.events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}
