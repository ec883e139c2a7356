package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/sqlite"

	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// SQLiteStore keeps layouts in one SQLite database file. Widgets are stored
// as a JSON column; everything else gets its own column.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "create database dir")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "open %s", path)
	}

	// WAL lets readers proceed while a write is in flight.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "enable WAL")
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "create tables")
	}
	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS layouts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		widgets TEXT NOT NULL,
		cols INTEGER NOT NULL,
		row_height REAL NOT NULL,
		gap REAL NOT NULL,
		padding_x REAL NOT NULL DEFAULT 0,
		padding_y REAL NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		is_default INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_layouts_updated ON layouts(updated_at DESC);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

const selectColumns = `id, name, description, widgets, cols, row_height, gap, padding_x, padding_y, created_at, updated_at, is_default`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*layout.Record, error) {
	var (
		rec       layout.Record
		widgets   string
		created   int64
		updated   int64
		isDefault int
	)
	err := row.Scan(&rec.ID, &rec.Name, &rec.Description, &widgets,
		&rec.Cols, &rec.RowHeight, &rec.Gap, &rec.Padding.X, &rec.Padding.Y,
		&created, &updated, &isDefault)
	if err != nil {
		return nil, err
	}

	var s grid.Snapshot
	if err := json.Unmarshal([]byte(widgets), &s); err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeInvalidFormat, err, "decode widgets of %s", rec.ID)
	}
	rec.Widgets = s
	rec.CreatedAt = time.Unix(0, created).UTC()
	rec.UpdatedAt = time.Unix(0, updated).UTC()
	rec.IsDefault = isDefault != 0
	return &rec, nil
}

// Get returns the layout with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*layout.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM layouts WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "get layout %s", id)
	}
	return rec, nil
}

// List returns every layout, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context) ([]*layout.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM layouts ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "list layouts")
	}
	defer rows.Close()

	var recs []*layout.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "list layouts")
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "list layouts")
	}
	return recs, nil
}

// Save validates rec, stamps its timestamps and upserts it.
func (s *SQLiteStore) Save(ctx context.Context, rec *layout.Record) error {
	if err := prepare(rec); err != nil {
		return err
	}

	widgets, err := json.Marshal(rec.Widgets)
	if err != nil {
		return gberr.Wrap(gberr.ErrCodeInvalidFormat, err, "encode widgets of %s", rec.ID)
	}
	if rec.Widgets == nil {
		widgets = []byte("[]")
	}

	query := `
	INSERT INTO layouts (id, name, description, widgets, cols, row_height, gap, padding_x, padding_y, created_at, updated_at, is_default)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		description = excluded.description,
		widgets = excluded.widgets,
		cols = excluded.cols,
		row_height = excluded.row_height,
		gap = excluded.gap,
		padding_x = excluded.padding_x,
		padding_y = excluded.padding_y,
		updated_at = excluded.updated_at,
		is_default = excluded.is_default
	`
	isDefault := 0
	if rec.IsDefault {
		isDefault = 1
	}
	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.Name, rec.Description, string(widgets),
		rec.Cols, rec.RowHeight, rec.Gap, rec.Padding.X, rec.Padding.Y,
		rec.CreatedAt.UnixNano(), rec.UpdatedAt.UnixNano(), isDefault,
	)
	if err != nil {
		return gberr.Wrap(gberr.ErrCodeStorage, err, "save layout %s", rec.ID)
	}
	return nil
}

// Delete removes a layout. Deleting a missing id is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM layouts WHERE id = ?`, id); err != nil {
		return gberr.Wrap(gberr.ErrCodeStorage, err, "delete layout %s", id)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
