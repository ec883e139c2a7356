package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/gridboard/pkg/buildinfo"
	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/layout"
)

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []*layout.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleCreate stores a new layout. Any id or timestamps in the body are
// replaced.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	rec, err := readRecord(w, r, s.opts.Grid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt, rec.UpdatedAt = time.Time{}, time.Time{}

	if err := s.store.Save(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/layouts/"+rec.ID)
	writeRecord(w, http.StatusCreated, rec)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.load(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tag := etag(rec)
	if match := r.Header.Get("If-None-Match"); match != "" && (match == tag || match == "*") {
		w.Header().Set("ETag", tag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeRecord(w, http.StatusOK, rec)
}

// handlePut replaces an existing layout. The id comes from the URL and the
// creation time is preserved.
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	current, err := s.load(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := checkIfMatch(r, current); err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, err := readRecord(w, r, s.opts.Grid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec.ID = current.ID
	rec.CreatedAt = current.CreatedAt

	if err := s.store.Save(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRecord(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := gberr.ValidateID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// load fetches the layout named by the {id} URL parameter.
func (s *Server) load(r *http.Request) (*layout.Record, error) {
	id := chi.URLParam(r, "id")
	if err := gberr.ValidateID(id); err != nil {
		return nil, err
	}
	return s.store.Get(r.Context(), id)
}

// checkIfMatch rejects a write whose If-Match header names a different
// version of the layout.
func checkIfMatch(r *http.Request, current *layout.Record) error {
	match := r.Header.Get("If-Match")
	if match == "" || match == "*" || match == etag(current) {
		return nil
	}
	return gberr.New(gberr.ErrCodePrecondition, "layout %s has changed", current.ID)
}
