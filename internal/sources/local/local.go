// Package local provides sources backed by local JSON, YAML and CSV files.
package local

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
	"github.com/agentstation/rollcall/pkg/records"
	"github.com/agentstation/rollcall/pkg/sources"
	"github.com/agentstation/rollcall/pkg/types"
)

// Format is the encoding of a source file.
type Format string

// Supported file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// FormatOf guesses the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", errors.NewValidationError("format", path, "unknown file extension, expected .json, .yaml, .yml or .csv")
	}
}

// Source loads the records of one data source from a file.
type Source struct {
	id           types.SourceID
	path         string
	format       Format
	prefix       string
	fieldPrefix  string
	keys         sources.KeyFields
	placeholders []string
}

// Option configures a local source.
type Option func(*Source)

// WithFormat sets the file format instead of guessing it from the extension.
func WithFormat(format Format) Option {
	return func(s *Source) {
		s.format = format
	}
}

// WithPrefix overrides the collision prefix, which defaults to the ID.
func WithPrefix(prefix string) Option {
	return func(s *Source) {
		s.prefix = prefix
	}
}

// WithFieldPrefix overrides the prefix added to field names that lack it.
// An empty prefix keeps field names as they are in the file.
func WithFieldPrefix(prefix string) Option {
	return func(s *Source) {
		s.fieldPrefix = prefix
	}
}

// WithKeyFields sets the fields the join key is built from.
func WithKeyFields(name, region string) Option {
	return func(s *Source) {
		s.keys = sources.KeyFields{Name: name, Region: region}
	}
}

// WithPlaceholders sets the fields written as "" when a primary record has no match.
func WithPlaceholders(fields ...string) Option {
	return func(s *Source) {
		s.placeholders = slices.Clone(fields)
	}
}

// New creates a source reading path.
func New(id types.SourceID, path string, opts ...Option) (*Source, error) {
	if id == "" {
		return nil, errors.NewValidationError("id", id, "source id is required")
	}
	if path == "" {
		return nil, errors.NewValidationError("path", path, "source path is required")
	}
	s := &Source{
		id:          id,
		path:        path,
		prefix:      id.String(),
		fieldPrefix: id.FieldPrefix(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.format == "" {
		format, err := FormatOf(path)
		if err != nil {
			return nil, err
		}
		s.format = format
	}
	switch s.format {
	case FormatJSON, FormatYAML, FormatCSV:
	default:
		return nil, errors.NewValidationError("format", s.format, "must be one of: json, yaml, csv")
	}
	return s, nil
}

// ID implements sources.Source.
func (s *Source) ID() types.SourceID { return s.id }

// Prefix implements sources.Source.
func (s *Source) Prefix() string { return s.prefix }

// Keys implements sources.Source.
func (s *Source) Keys() sources.KeyFields { return s.keys }

// Placeholders implements sources.Source.
func (s *Source) Placeholders() []string { return slices.Clone(s.placeholders) }

// Path returns the file the source reads.
func (s *Source) Path() string { return s.path }

// Format returns the file format.
func (s *Source) Format() Format { return s.format }

// Records reads and decodes the file. Field names without the field prefix
// get it added, so "name" in a sansad file becomes "sansad_name".
func (s *Source) Records(ctx context.Context) ([]*records.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("source file", s.path)
		}
		return nil, errors.WrapIO("read", s.path, err)
	}

	var recs []*records.Record
	switch s.format {
	case FormatJSON:
		recs, err = decodeJSON(data)
	case FormatYAML:
		recs, err = decodeYAML(data)
	case FormatCSV:
		recs, err = decodeCSV(ctx, data)
	}
	if err != nil {
		return nil, errors.WrapParse(string(s.format), s.path, err)
	}

	if s.fieldPrefix != "" {
		for i, rec := range recs {
			recs[i] = s.prefixed(rec)
		}
	}

	logging.FromContext(ctx).Debug().
		Str("source", s.id.String()).
		Str("path", s.path).
		Str("format", string(s.format)).
		Int("records", len(recs)).
		Msg("Loaded source file")
	return recs, nil
}

func (s *Source) prefixed(rec *records.Record) *records.Record {
	out := records.New(rec.Len())
	rec.Each(func(name string, v records.Value) {
		if !strings.HasPrefix(name, s.fieldPrefix) {
			name = s.fieldPrefix + name
		}
		out.Set(name, v)
	})
	return out
}
