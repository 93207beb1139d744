// Package reconciler joins record sets from several sources on canonical keys.
//
// The first source is the primary: it decides which records exist and in
// which order. Each secondary source is indexed by key, and every primary
// record is merged with the first secondary record sharing its key. Fields
// are never overwritten; collisions are handled by a Strategy, re-prefixing
// by default. A primary record without a match in a source gets that
// source's placeholder fields instead.
//
// No-match is counted, never an error. Only configuration problems and
// source loading failures are returned.
package reconciler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
	"github.com/agentstation/rollcall/pkg/provenance"
	"github.com/agentstation/rollcall/pkg/records"
	"github.com/agentstation/rollcall/pkg/sources"
	"github.com/agentstation/rollcall/pkg/types"
)

// cancelCheckInterval is how many primary records are merged between context checks.
const cancelCheckInterval = 256

// Reconciler joins a primary source with any number of secondary sources.
type Reconciler interface {
	// Reconcile loads every source and merges the secondaries into the
	// primary records, in the order given.
	Reconcile(ctx context.Context, primary sources.Source, secondaries ...sources.Source) (*Result, error)
}

type reconciler struct {
	strategy    Strategy
	keys        KeyBuilder
	tracking    bool
	concurrency int
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		strategy:    options.strategy,
		keys:        options.keys,
		tracking:    options.tracking,
		concurrency: options.concurrency,
	}, nil
}

// KeyFuncFor returns the KeyFunc of a source's key fields.
func KeyFuncFor(keys KeyBuilder, fields sources.KeyFields) KeyFunc {
	return func(rec *records.Record) (string, bool) {
		region := ""
		if fields.UsesRegion() {
			region = rec.Text(fields.Region)
		}
		return keys.KeyOf(rec.Text(fields.Name), region)
	}
}

func (r *reconciler) Reconcile(ctx context.Context, primary sources.Source, secondaries ...sources.Source) (*Result, error) {
	if err := validate(primary, secondaries); err != nil {
		return nil, err
	}

	runID := logging.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logging.WithRunID(ctx, runID)
	}
	ctx = logging.WithOperation(ctx, "reconcile")
	logger := logging.FromContext(ctx)

	all := append([]sources.Source{primary}, secondaries...)
	loaded, err := r.load(ctx, all)
	if err != nil {
		return nil, err
	}

	result := newResult(runID)
	result.Metadata.Strategy = r.strategy.Type()
	for _, src := range all {
		result.Metadata.Sources = append(result.Metadata.Sources, src.ID())
	}

	primaryRecs := loaded[0]
	primaryIndex := BuildIndex(primaryRecs, KeyFuncFor(r.keys, primary.Keys()))
	result.Primary = SourceStats{
		Source:       primary.ID(),
		Records:      len(primaryRecs),
		EmptyKeys:    primaryIndex.EmptyKeys(),
		ByeElections: primaryIndex.ByeElections(),
		Shadowed:     primaryIndex.Shadowed(),
		Total:        len(primaryRecs),
	}

	indexes := make([]*Index, len(secondaries))
	result.Secondaries = make([]SourceStats, len(secondaries))
	for i, src := range secondaries {
		ix := BuildIndex(loaded[i+1], KeyFuncFor(r.keys, src.Keys()))
		indexes[i] = ix
		result.Secondaries[i] = SourceStats{
			Source:       src.ID(),
			Records:      len(loaded[i+1]),
			EmptyKeys:    ix.EmptyKeys(),
			ByeElections: ix.ByeElections(),
			Shadowed:     ix.Shadowed(),
		}
		logger.Debug().
			Str("source", src.ID().String()).
			Int("keys", ix.Len()).
			Int("empty_keys", ix.EmptyKeys()).
			Int("shadowed", ix.Shadowed()).
			Msg("Built join index")
	}

	tracker := provenance.NewTracker(r.tracking)
	primaryKey := KeyFuncFor(r.keys, primary.Keys())
	matchedRecs := make([]map[*records.Record]struct{}, len(secondaries))
	for i := range matchedRecs {
		matchedRecs[i] = make(map[*records.Record]struct{})
	}

	result.Records = make([]*records.Record, 0, len(primaryRecs))
	result.Keys = make([]string, 0, len(primaryRecs))
	for row, rec := range primaryRecs {
		if row%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
			}
		}

		key, _ := primaryKey(rec)
		id := strconv.Itoa(row)
		acc := rec.Clone()
		if r.tracking {
			rec.Each(func(field string, v records.Value) {
				tracker.Track(id, provenance.Provenance{
					Source: primary.ID(), Field: field, Target: field, Key: key,
					Value: v.Text(), Reason: provenance.ReasonPrimary,
				})
			})
		}

		for i, src := range secondaries {
			stats := &result.Secondaries[i]
			stats.Total++
			track := r.trackFunc(tracker, id, src.ID(), key)

			match, ok := indexes[i].Lookup(key)
			if !ok {
				stats.Unmatched++
				fillPlaceholders(acc, src.Placeholders(), track)
				if key != "" {
					logger.Trace().Str("source", src.ID().String()).Str("key", key).Msg("No match")
				}
				continue
			}
			stats.Matched++
			matchedRecs[i][match] = struct{}{}
			stats.Collisions += mergeInto(acc, match, src.Prefix(), r.strategy, track)
		}

		result.Records = append(result.Records, acc)
		result.Keys = append(result.Keys, key)
	}

	for i := range secondaries {
		result.Secondaries[i].DistinctMatched = len(matchedRecs[i])
	}
	result.Provenance = tracker.Map()
	result.finalize()

	for _, s := range result.Secondaries {
		logger.Info().
			Str("source", s.Source.String()).
			Int("matched", s.Matched).
			Int("total", s.Total).
			Int("collisions", s.Collisions).
			Msgf("Matches found: %d/%d", s.Matched, s.Total)
	}
	return result, nil
}

func (r *reconciler) trackFunc(tracker provenance.Tracker, id string, src types.SourceID, key string) trackFunc {
	if !r.tracking {
		return nil
	}
	return func(field, target string, v records.Value, reason provenance.Reason) {
		tracker.Track(id, provenance.Provenance{
			Source: src, Field: field, Target: target, Key: key,
			Value: v.Text(), Reason: reason,
		})
	}
}

// validate checks the sources before anything is loaded. Every source must
// key on the same shape, name only or name and region.
func validate(primary sources.Source, secondaries []sources.Source) error {
	if primary == nil {
		return errors.NewValidationError("primary", nil, "primary source cannot be nil")
	}
	if primary.Keys().Name == "" {
		return errors.NewValidationError("keys.name", primary.ID(), "primary source has no name key field")
	}

	seen := map[types.SourceID]bool{primary.ID(): true}
	for i, src := range secondaries {
		if src == nil {
			return errors.NewValidationError(fmt.Sprintf("secondaries[%d]", i), nil, "secondary source cannot be nil")
		}
		if seen[src.ID()] {
			return errors.NewValidationError("source", src.ID(), "duplicate source id "+src.ID().String())
		}
		seen[src.ID()] = true

		if src.Keys().Name == "" {
			return errors.NewValidationError("keys.name", src.ID(), "source "+src.ID().String()+" has no name key field")
		}
		if src.Keys().UsesRegion() != primary.Keys().UsesRegion() {
			pk, sk := primary.Keys(), src.Keys()
			return errors.NewMergeError(src.ID().String(), primary.ID().String(),
				[]string{pk.Name, pk.Region, sk.Name, sk.Region},
				fmt.Errorf("%w: key shapes differ, region is used by one source only", errors.ErrInvalidInput))
		}
		if src.Prefix() == "" {
			return errors.NewValidationError("prefix", src.ID(), "source "+src.ID().String()+" has an empty collision prefix")
		}
	}
	return nil
}
