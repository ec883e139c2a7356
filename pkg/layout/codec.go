package layout

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	gberr "github.com/matzehuels/gridboard/pkg/errors"
	"github.com/matzehuels/gridboard/pkg/grid"
)

// Format is a layout file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding for a file path from its extension.
// Anything that is not .yaml or .yml is JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Marshal encodes a record as indented JSON.
func Marshal(r *Record) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeInvalidFormat, err, "encode layout")
	}
	return append(data, '\n'), nil
}

// DecodeOption adjusts how a layout document is decoded.
type DecodeOption func(*decodeOptions)

type decodeOptions struct {
	defaults grid.Config
}

// WithDefaults supplies the grid settings used for values a document leaves
// out. Without it the package defaults of grid.DefaultConfig apply.
func WithDefaults(cfg grid.Config) DecodeOption {
	return func(o *decodeOptions) { o.defaults = cfg }
}

func newDecodeOptions(opts []DecodeOption) decodeOptions {
	o := decodeOptions{defaults: grid.DefaultConfig()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.defaults.Cols <= 0 {
		o.defaults.Cols = grid.DefaultCols
	}
	if o.defaults.RowHeight <= 0 {
		o.defaults.RowHeight = grid.DefaultRowHeight
	}
	return o
}

// gridSettings records which grid settings a document spells out, so an
// explicit zero gap or padding is kept while an omitted one is defaulted.
type gridSettings struct {
	Cols      *int          `json:"cols" yaml:"cols"`
	RowHeight *float64      `json:"row_height" yaml:"row_height"`
	Gap       *float64      `json:"gap" yaml:"gap"`
	Padding   *grid.Padding `json:"padding" yaml:"padding"`
}

func (s gridSettings) fill(r *Record, def grid.Config) {
	if s.Cols == nil || *s.Cols == 0 {
		r.Cols = def.Cols
	}
	if s.RowHeight == nil || *s.RowHeight == 0 {
		r.RowHeight = def.RowHeight
	}
	if s.Gap == nil {
		r.Gap = def.Gap
	}
	if s.Padding == nil {
		r.Padding = def.Padding
	}
}

// Unmarshal decodes a JSON record and fills in omitted grid settings.
func Unmarshal(data []byte, opts ...DecodeOption) (*Record, error) {
	var (
		r   Record
		set gridSettings
	)
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeInvalidFormat, err, "decode layout")
	}
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeInvalidFormat, err, "decode layout")
	}
	set.fill(&r, newDecodeOptions(opts).defaults)
	return &r, nil
}

// MarshalYAML encodes a record as YAML.
func MarshalYAML(r *Record) ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeInvalidFormat, err, "encode layout")
	}
	return data, nil
}

// UnmarshalYAML decodes a YAML record and fills in omitted grid settings.
func UnmarshalYAML(data []byte, opts ...DecodeOption) (*Record, error) {
	var (
		r   Record
		set gridSettings
	)
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeInvalidFormat, err, "decode layout")
	}
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeInvalidFormat, err, "decode layout")
	}
	set.fill(&r, newDecodeOptions(opts).defaults)
	return &r, nil
}

// Encode writes a record in the given format.
func Encode(r *Record, f Format) ([]byte, error) {
	if f == FormatYAML {
		return MarshalYAML(r)
	}
	return Marshal(r)
}

// Decode reads a record in the given format.
func Decode(data []byte, f Format, opts ...DecodeOption) (*Record, error) {
	if f == FormatYAML {
		return UnmarshalYAML(data, opts...)
	}
	return Unmarshal(data, opts...)
}

// ReadFile loads a record from a JSON or YAML file.
func ReadFile(path string, opts ...DecodeOption) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, gberr.Wrap(gberr.ErrCodeLayoutNotFound, err, "layout file %s", path)
		}
		return nil, gberr.Wrap(gberr.ErrCodeStorage, err, "read %s", path)
	}
	r, err := Decode(data, FormatFor(path), opts...)
	if err != nil {
		return nil, gberr.Wrap(gberr.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	return r, nil
}

// WriteFile saves a record to path in the encoding its extension implies.
// The file is replaced atomically.
func WriteFile(path string, r *Record) error {
	data, err := Encode(r, FormatFor(path))
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".gridboard-*")
	if err != nil {
		return gberr.Wrap(gberr.ErrCodeStorage, err, "write %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return gberr.Wrap(gberr.ErrCodeStorage, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return gberr.Wrap(gberr.ErrCodeStorage, err, "write %s", path)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return gberr.Wrap(gberr.ErrCodeStorage, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return gberr.Wrap(gberr.ErrCodeStorage, err, "write %s", path)
	}
	return nil
}

// fingerprintInput is the canonical content hashed by Fingerprint.
type fingerprintInput struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Widgets     grid.Snapshot `json:"widgets"`
	Cols        int           `json:"cols"`
	RowHeight   float64       `json:"row_height"`
	Gap         float64       `json:"gap"`
	Padding     grid.Padding  `json:"padding"`
}

// Fingerprint returns a hex sha256 over the record's editable content: name,
// description, widgets and grid settings. Identity and timestamps are
// excluded, so a record saved twice without edits keeps its fingerprint.
func Fingerprint(r *Record) string {
	data, _ := json.Marshal(fingerprintInput{
		Name:        r.Name,
		Description: r.Description,
		Widgets:     r.Widgets,
		Cols:        r.Cols,
		RowHeight:   r.RowHeight,
		Gap:         r.Gap,
		Padding:     r.Padding,
	})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
