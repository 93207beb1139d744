package reconciler

import (
	"github.com/agentstation/rollcall/pkg/provenance"
	"github.com/agentstation/rollcall/pkg/records"
)

// StrategyType represents the field-collision strategy of a merge.
type StrategyType string

// String returns the string representation of a strategy type.
func (s StrategyType) String() string {
	return string(s)
}

const (
	// StrategyTypeRePrefix writes colliding fields under a source prefix.
	StrategyTypeRePrefix StrategyType = "re-prefix"
	// StrategyTypeKeepPrimary drops colliding secondary fields.
	StrategyTypeKeepPrimary StrategyType = "keep-primary"
)

// Strategy decides where a secondary field is written in the merged record.
type Strategy interface {
	// Type returns the strategy type.
	Type() StrategyType

	// Description returns a human-readable description.
	Description() string

	// Resolve returns the target field name for field, or "" to drop it.
	// The accumulator already holds the primary fields and earlier merges.
	Resolve(acc *records.Record, field, prefix string) (target string, reason provenance.Reason)
}

type baseStrategy struct {
	typ         StrategyType
	description string
}

func (s *baseStrategy) Type() StrategyType {
	return s.typ
}

func (s *baseStrategy) Description() string {
	return s.description
}

// RePrefixStrategy never overwrites or drops a value. A colliding field is
// written as prefix_field, and the prefix is applied again until the name is
// free.
type RePrefixStrategy struct {
	baseStrategy
}

// NewRePrefixStrategy returns the default lossless strategy.
func NewRePrefixStrategy() Strategy {
	return &RePrefixStrategy{
		baseStrategy: baseStrategy{
			typ:         StrategyTypeRePrefix,
			description: "Keeps primary values and re-prefixes colliding secondary fields",
		},
	}
}

// Resolve implements Strategy.
func (s *RePrefixStrategy) Resolve(acc *records.Record, field, prefix string) (string, provenance.Reason) {
	if !acc.Has(field) {
		return field, provenance.ReasonVerbatim
	}
	target := field
	for acc.Has(target) {
		target = prefix + "_" + target
	}
	return target, provenance.ReasonReprefixed
}

// KeepPrimaryStrategy drops colliding secondary fields.
type KeepPrimaryStrategy struct {
	baseStrategy
}

// NewKeepPrimaryStrategy returns a strategy that discards colliding fields.
func NewKeepPrimaryStrategy() Strategy {
	return &KeepPrimaryStrategy{
		baseStrategy: baseStrategy{
			typ:         StrategyTypeKeepPrimary,
			description: "Keeps primary values and drops colliding secondary fields",
		},
	}
}

// Resolve implements Strategy.
func (s *KeepPrimaryStrategy) Resolve(acc *records.Record, field, _ string) (string, provenance.Reason) {
	if acc.Has(field) {
		return "", ""
	}
	return field, provenance.ReasonVerbatim
}
