package sources

import (
	"context"
	"slices"

	"github.com/agentstation/rollcall/pkg/records"
	"github.com/agentstation/rollcall/pkg/types"
)

// Static is a Source over records already in memory.
type Static struct {
	id           types.SourceID
	prefix       string
	keys         KeyFields
	placeholders []string
	recs         []*records.Record
}

// Option configures a Static source.
type Option func(*Static)

// WithPrefix overrides the collision prefix, which defaults to the ID.
func WithPrefix(prefix string) Option {
	return func(s *Static) {
		s.prefix = prefix
	}
}

// WithKeyFields sets the fields the join key is built from.
func WithKeyFields(name, region string) Option {
	return func(s *Static) {
		s.keys = KeyFields{Name: name, Region: region}
	}
}

// WithPlaceholders sets the fields written as "" when a primary record has no match.
func WithPlaceholders(fields ...string) Option {
	return func(s *Static) {
		s.placeholders = slices.Clone(fields)
	}
}

// NewStatic creates a source over recs. The slice is not copied.
func NewStatic(id types.SourceID, recs []*records.Record, opts ...Option) *Static {
	s := &Static{id: id, prefix: id.String(), recs: recs}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID implements Source.
func (s *Static) ID() types.SourceID { return s.id }

// Prefix implements Source.
func (s *Static) Prefix() string { return s.prefix }

// Keys implements Source.
func (s *Static) Keys() KeyFields { return s.keys }

// Placeholders implements Source.
func (s *Static) Placeholders() []string { return slices.Clone(s.placeholders) }

// Records implements Source.
func (s *Static) Records(ctx context.Context) ([]*records.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.recs, nil
}
