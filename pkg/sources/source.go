// Package sources defines the record sources joined by the reconciler.
//
// A Source yields an ordered slice of prefixed records together with the
// metadata the join needs: which fields hold the name and region parts of
// the key, the prefix applied to colliding fields, and the placeholder
// fields written when a primary record has no match in this source.
//
// Example usage:
//
//	srcs := sources.NewSources()
//	_ = srcs.Add(sources.NewStatic("sansad", recs,
//	    sources.WithKeyFields("sansad_constituency", "sansad_state"),
//	    sources.WithPlaceholders("sansad_name", "sansad_email"),
//	))
//	for _, src := range srcs.List() {
//	    recs, err := src.Records(ctx)
//	    ...
//	}
package sources

import (
	"context"
	"slices"
	"sync"

	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/records"
	"github.com/agentstation/rollcall/pkg/types"
)

// Source is an ordered set of records from one upstream provider.
type Source interface {
	// ID identifies the source.
	ID() types.SourceID

	// Prefix is prepended, with "_", to fields that collide during a merge.
	Prefix() string

	// Keys names the fields the join key is built from.
	Keys() KeyFields

	// Placeholders lists the fields set to "" on primary records with no
	// match in this source.
	Placeholders() []string

	// Records returns the records in source order.
	Records(ctx context.Context) ([]*records.Record, error)
}

// KeyFields names the record fields holding the two key parts.
// An empty Region keys on the name alone.
type KeyFields struct {
	Name   string `yaml:"name" json:"name"`
	Region string `yaml:"region,omitempty" json:"region,omitempty"`
}

// UsesRegion reports whether the key has a region part.
func (k KeyFields) UsesRegion() bool {
	return k.Region != ""
}

// Sources is a thread-safe, insertion-ordered collection of sources.
// The first source added is the primary.
type Sources struct {
	mu    sync.RWMutex
	order []types.SourceID
	byID  map[types.SourceID]Source
}

// NewSources creates an empty collection.
func NewSources() *Sources {
	return &Sources{
		byID: make(map[types.SourceID]Source),
	}
}

// Add appends a source. IDs must be unique.
func (s *Sources) Add(src Source) error {
	if src == nil {
		return errors.NewValidationError("source", nil, "source cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[src.ID()]; exists {
		return errors.WrapResource("add", "source", src.ID().String(), errors.ErrAlreadyExists)
	}
	s.order = append(s.order, src.ID())
	s.byID[src.ID()] = src
	return nil
}

// Get returns a source by ID.
func (s *Sources) Get(id types.SourceID) (Source, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, found := s.byID[id]
	return src, found
}

// Delete removes a source by ID.
func (s *Sources) Delete(id types.SourceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.byID[id]; !found {
		return
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(o types.SourceID) bool { return o == id })
}

// Len returns the number of sources.
func (s *Sources) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// List returns the sources in insertion order.
func (s *Sources) List() []Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]Source, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, s.byID[id])
	}
	return list
}

// IDs returns the source IDs in insertion order.
func (s *Sources) IDs() []types.SourceID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// Primary returns the first source and the remaining ones.
func (s *Sources) Primary() (Source, []Source, error) {
	list := s.List()
	if len(list) == 0 {
		return nil, nil, &errors.NotFoundError{Resource: "source", ID: "primary"}
	}
	return list[0], list[1:], nil
}
