package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/gridboard/pkg/cache"
	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/layout"
	"github.com/matzehuels/gridboard/pkg/observability"
)

// geometryResponse is the pixel geometry of a layout at one width.
type geometryResponse struct {
	ID         string               `json:"id"`
	Width      float64              `json:"width"`
	Height     float64              `json:"height"`
	Breakpoint string               `json:"breakpoint"`
	Rects      map[string]grid.Rect `json:"rects"`
}

// editRequest is the body of the drag and resize endpoints. DX and DY are
// pixel displacements; Width is the container width they were measured in.
type editRequest struct {
	WidgetID         string  `json:"widget_id"`
	DX               float64 `json:"dx"`
	DY               float64 `json:"dy"`
	Width            float64 `json:"width,omitempty"`
	PreventCollision *bool   `json:"prevent_collision,omitempty"`
	Compact          *string `json:"compact,omitempty"`
}

type editResponse struct {
	Accepted bool           `json:"accepted"`
	Layout   *layout.Record `json:"layout"`
}

type compactRequest struct {
	Compact string `json:"compact"`
}

type removeResponse struct {
	Removed bool           `json:"removed"`
	Layout  *layout.Record `json:"layout"`
}

// handleGeometry serves pixel rects for a layout. Results are cached by
// layout fingerprint and width, so any edit naturally misses.
func (s *Server) handleGeometry(w http.ResponseWriter, r *http.Request) {
	width := s.opts.Grid.Width
	if v := r.URL.Query().Get("width"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			s.writeError(w, r, gberr.New(gberr.ErrCodeInvalidInput, "width must be a positive number, got %q", v))
			return
		}
		width = f
	}

	rec, err := s.load(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	key := cache.GeometryKey(layout.Fingerprint(rec), width)
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("geometry cache read failed", "err", err)
	} else if ok {
		w.Header().Set("X-Cache", "HIT")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
		return
	}

	cfg := rec.Config(width)
	data, err := json.Marshal(geometryResponse{
		ID:         rec.ID,
		Width:      width,
		Height:     grid.GridHeight(rec.Widgets, cfg),
		Breakpoint: grid.Breakpoint(width, nil),
		Rects:      grid.PixelRects(rec.Widgets, cfg),
	})
	if err != nil {
		s.writeError(w, r, gberr.Wrap(gberr.ErrCodeInternal, err, "encode geometry"))
		return
	}
	data = append(data, '\n')
	if err := s.cache.Set(ctx, key, data, s.opts.CacheTTL); err != nil {
		s.logger.Warn("geometry cache write failed", "err", err)
	}

	w.Header().Set("X-Cache", "MISS")
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	s.handleEdit(w, r, "drag", grid.Drag)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	s.handleEdit(w, r, "resize", grid.Resize)
}

type editFunc func(grid.Snapshot, string, float64, float64, grid.Config, grid.Options) (grid.Snapshot, bool)

// handleEdit applies a drag or resize. A rejected edit is not an error: the
// response carries accepted=false and the unchanged layout.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request, op string, fn editFunc) {
	var req editRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	policy, err := s.policy(req.PreventCollision, req.Compact)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	width := req.Width
	if width <= 0 {
		width = s.opts.Grid.Width
	}

	rec, err := s.loadWidget(r, req.WidgetID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := checkIfMatch(r, rec); err != nil {
		s.writeError(w, r, err)
		return
	}

	before, _ := rec.Widgets.Find(req.WidgetID)
	next, ok := fn(rec.Widgets, req.WidgetID, req.DX, req.DY, rec.Config(width), policy)
	hooks := observability.Engine()
	if !ok {
		hooks.OnRejected(op, req.WidgetID)
		writeRecordJSON(w, editResponse{Accepted: false, Layout: rec}, rec)
		return
	}

	after, _ := next.Find(req.WidgetID)
	if op == "drag" {
		hooks.OnMove(req.WidgetID, after.Position.X-before.Position.X, after.Position.Y-before.Position.Y)
	} else {
		hooks.OnResize(req.WidgetID, after.Position.W-before.Position.W, after.Position.H-before.Position.H)
	}

	rec.Widgets = next
	if err := s.store.Save(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRecordJSON(w, editResponse{Accepted: true, Layout: rec}, rec)
}

// handleCompact runs one compaction pass. An empty compact field uses the
// server's configured mode.
func (s *Server) handleCompact(w http.ResponseWriter, r *http.Request) {
	var req compactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	kind := s.opts.Policy.Compact
	if req.Compact != "" {
		k, err := grid.ParseCompactType(req.Compact)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		kind = k
	}

	rec, err := s.load(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := checkIfMatch(r, rec); err != nil {
		s.writeError(w, r, err)
		return
	}

	start := time.Now()
	rec.Widgets = grid.Compact(rec.Widgets, kind, rec.Cols)
	observability.Engine().OnCompact(string(kind), len(rec.Widgets), time.Since(start))

	if err := s.store.Save(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRecord(w, http.StatusOK, rec)
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	s.handleToggle(w, r, grid.ToggleLock)
}

func (s *Server) handleCollapse(w http.ResponseWriter, r *http.Request) {
	s.handleToggle(w, r, grid.ToggleCollapse)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request, fn func(grid.Snapshot, string) grid.Snapshot) {
	wid := chi.URLParam(r, "wid")
	rec, err := s.loadWidget(r, wid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := checkIfMatch(r, rec); err != nil {
		s.writeError(w, r, err)
		return
	}

	rec.Widgets = fn(rec.Widgets, wid)
	if err := s.store.Save(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRecord(w, http.StatusOK, rec)
}

// handleRemove deletes a widget. Locked widgets stay and the response is a
// 409 carrying removed=false and the unchanged layout.
func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	wid := chi.URLParam(r, "wid")
	rec, err := s.loadWidget(r, wid)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := checkIfMatch(r, rec); err != nil {
		s.writeError(w, r, err)
		return
	}

	next, removed := grid.Remove(rec.Widgets, wid)
	observability.Engine().OnRemove(wid, removed)
	if !removed {
		w.Header().Set("ETag", etag(rec))
		writeJSON(w, http.StatusConflict, removeResponse{Removed: false, Layout: rec})
		return
	}

	rec.Widgets = next
	if err := s.store.Save(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRecordJSON(w, removeResponse{Removed: true, Layout: rec}, rec)
}

// loadWidget loads the layout in the URL and checks it contains widget id.
func (s *Server) loadWidget(r *http.Request, id string) (*layout.Record, error) {
	if id == "" {
		return nil, gberr.New(gberr.ErrCodeInvalidInput, "widget id is required")
	}
	rec, err := s.load(r)
	if err != nil {
		return nil, err
	}
	if rec.Widgets.Index(id) < 0 {
		return nil, gberr.New(gberr.ErrCodeWidgetNotFound, "layout %s has no widget %q", rec.ID, id)
	}
	return rec, nil
}

// policy applies per-request overrides to the server's default policy.
func (s *Server) policy(preventCollision *bool, compact *string) (grid.Options, error) {
	p := s.opts.Policy
	if preventCollision != nil {
		p.PreventCollision = *preventCollision
	}
	if compact != nil {
		k, err := grid.ParseCompactType(*compact)
		if err != nil {
			return p, err
		}
		p.Compact = k
	}
	return p, nil
}

// writeRecordJSON writes v with rec's ETag.
func writeRecordJSON(w http.ResponseWriter, v any, rec *layout.Record) {
	w.Header().Set("ETag", etag(rec))
	writeJSON(w, http.StatusOK, v)
}
