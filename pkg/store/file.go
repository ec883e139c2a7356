package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// FileStore is a file-based layout store for CLI applications.
// Layouts are stored as JSON files named by id in a config directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based layout store.
// If baseDir is empty, defaults to ~/.config/gridboard/layouts/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "get home dir")
		}
		baseDir = filepath.Join(home, ".config", "gridboard", "layouts")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "create layout dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) layoutPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// Get reads the layout file for id.
func (s *FileStore) Get(ctx context.Context, id string) (*layout.Record, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, err := layout.ReadFile(s.layoutPath(id))
	if gberr.IsNotFound(err) {
		return nil, notFound(id)
	}
	return rec, err
}

// List reads every .json file in the base directory, skipping files that
// do not decode.
func (s *FileStore) List(ctx context.Context) ([]*layout.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "read layout dir")
	}

	recs := make([]*layout.Record, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		rec, err := layout.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		recs = append(recs, rec)
	}
	sortRecords(recs)
	return recs, nil
}

// Save validates rec and writes it atomically as <id>.json.
func (s *FileStore) Save(ctx context.Context, rec *layout.Record) error {
	if err := prepare(rec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return layout.WriteFile(s.layoutPath(rec.ID), rec)
}

// Delete removes the layout file for id. A missing file is not an error.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.layoutPath(id)); err != nil && !os.IsNotExist(err) {
		return gberr.Wrap(gberr.ErrCodeStorage, err, "remove layout %s", id)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for layout files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
