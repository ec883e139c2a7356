package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    gberr.Code `json:"code"`
	Message string     `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRecord writes a layout with its ETag.
func writeRecord(w http.ResponseWriter, status int, rec *layout.Record) {
	w.Header().Set("ETag", etag(rec))
	writeJSON(w, status, rec)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := gberr.HTTPStatus(err)
	code := gberr.GetCode(err)
	if code == "" {
		code = gberr.ErrCodeInternal
	}
	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: describe(err)})
}

// describe renders err without code prefixes.
func describe(err error) string {
	var e *gberr.Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + describe(e.Cause)
}

// decodeJSON reads a size-limited JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return gberr.New(gberr.ErrCodeInvalidInput, "request body is empty")
		}
		return gberr.Wrap(gberr.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

// readRecord decodes a layout record from the request body. Omitted grid
// settings are taken from defaults.
func readRecord(w http.ResponseWriter, r *http.Request, defaults grid.Config) (*layout.Record, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeInvalidInput, err, "read request body")
	}
	return layout.Unmarshal(data, layout.WithDefaults(defaults))
}

// etag returns the strong entity tag of a layout.
func etag(rec *layout.Record) string {
	return `"` + layout.Fingerprint(rec) + `"`
}

func errRouteNotFound(r *http.Request) error {
	return gberr.New(gberr.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}
