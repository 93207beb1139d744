package reconciler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rollcall/pkg/canonical"
	pkgerrors "github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
	"github.com/agentstation/rollcall/pkg/provenance"
	"github.com/agentstation/rollcall/pkg/reconciler"
	"github.com/agentstation/rollcall/pkg/records"
	"github.com/agentstation/rollcall/pkg/sources"
	"github.com/agentstation/rollcall/pkg/types"
)

func newReconciler(t *testing.T, opts ...reconciler.Option) reconciler.Reconciler {
	t.Helper()
	r, err := reconciler.New(opts...)
	require.NoError(t, err)
	return r
}

func TestReconcileAliasMatch(t *testing.T) {
	primary := mynetaSource(mynetaRecord("Ambica G Lakshminarayana Valmiki", "Ananthapur", "Andhra Pradesh"))
	secondary := sansadSource(sansadRecord("Ambica G Lakshminarayana Valmiki", "ANANTAPUR", "ANDHRA PRADESH"))

	result, err := newReconciler(t).Reconcile(context.Background(), primary, secondary)
	require.NoError(t, err)

	require.Equal(t, 1, result.Len())
	assert.Equal(t, []string{"ANANTAPUR:ANDHRA PRADESH"}, result.Keys)
	merged := result.Records[0]
	assert.Equal(t, "ANANTAPUR", merged.Text("sansad_constituency"))
	assert.Equal(t, "Andhra Pradesh", merged.Text("sansad_state"), "primary value wins")
	assert.Equal(t, "ANDHRA PRADESH", merged.Text("sansad_sansad_state"))

	stats, ok := result.Stats(types.SansadID)
	require.True(t, ok)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 0, stats.Unmatched)
	assert.Equal(t, 1, stats.Collisions)
	assert.Equal(t, "Matches found: 1/1", result.Summary())
	assert.NotEmpty(t, result.Metadata.RunID)
	assert.Equal(t, reconciler.StrategyTypeRePrefix, result.Metadata.Strategy)
	assert.Equal(t, []types.SourceID{types.MyNetaID, types.SansadID}, result.Metadata.Sources)
}

func TestReconcileOrderAndPlaceholders(t *testing.T) {
	primary := mynetaSource(
		mynetaRecord("C", "Goa North", "Goa"),
		mynetaRecord("A", "Nowhere", "Goa"),
		mynetaRecord("B", "(ST)", "Goa"),
	)
	secondary := sansadSource(
		sansadRecord("Goa MP", "North Goa", "Goa"),
		sansadRecord("Goa North MP", "GOA NORTH", "GOA"),
		sansadRecord("Shadowed", "Goa North", "Goa"),
	)

	result, err := newReconciler(t).Reconcile(context.Background(), primary, secondary)
	require.NoError(t, err)

	require.Equal(t, 3, result.Len())
	assert.Equal(t, []string{"C", "A", "B"}, []string{
		result.Records[0].Text("myneta_candidate"),
		result.Records[1].Text("myneta_candidate"),
		result.Records[2].Text("myneta_candidate"),
	})
	assert.Equal(t, "Goa North MP", result.Records[0].Text("sansad_name"), "first record of the bucket wins")

	assertRecord(t, records.FromPairs(
		"myneta_candidate", "A",
		"myneta_constituency", "Nowhere",
		"sansad_state", "Goa",
		"sansad_name", "",
		"sansad_email", "",
	), result.Records[1])
	assert.Equal(t, "", result.Keys[2])

	stats, _ := result.Stats(types.SansadID)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 2, stats.Unmatched)
	assert.Equal(t, 1, stats.Shadowed)
	assert.Equal(t, 1, stats.DistinctMatched)
	assert.InDelta(t, 1.0/3, stats.MatchRate(), 1e-9)
	assert.Equal(t, 1, result.Primary.EmptyKeys)
	assert.Equal(t, "Matches found: 1/3", result.Summary())

	assert.Equal(t, []string{
		"myneta_candidate", "myneta_constituency",
		"sansad_constituency", "sansad_email", "sansad_name",
		"sansad_sansad_state", "sansad_state",
	}, result.Schema)
}

// A bye-election replacement resolves to the same key as the regular
// constituency, so it joins; the flag only shows up in the counts.
func TestReconcileByeElectionJoinsBaseConstituency(t *testing.T) {
	primary := mynetaSource(mynetaRecord("Replacement", "Foo: Bye Election 2024", "Kerala"))
	secondary := sansadSource(sansadRecord("Replacement", "Foo", "Kerala"))

	result, err := newReconciler(t).Reconcile(context.Background(), primary, secondary)
	require.NoError(t, err)

	assert.Equal(t, "FOO:KERALA", result.Keys[0])
	assert.Equal(t, 1, result.Primary.ByeElections)
	stats, _ := result.Stats(types.SansadID)
	assert.Equal(t, 1, stats.Matched)
}

func TestReconcileMultipleSecondaries(t *testing.T) {
	primary := mynetaSource(mynetaRecord("A", "Gurgaon", "Haryana"))
	sansad := sansadSource(sansadRecord("A", "Gurugram", "Haryana"))
	prs := sources.NewStatic("prs", []*records.Record{
		records.FromPairs("sansad_name", "A (prs)", "seat", "GURUGRAM", "state", "HARYANA", "attendance", "91%"),
	}, sources.WithKeyFields("seat", "state"), sources.WithPlaceholders("attendance"))

	result, err := newReconciler(t).Reconcile(context.Background(), primary, sansad, prs)
	require.NoError(t, err)

	merged := result.Records[0]
	assert.Equal(t, "A", merged.Text("sansad_name"))
	assert.Equal(t, "A (prs)", merged.Text("prs_sansad_name"), "secondaries merge in source order")
	assert.Equal(t, "91%", merged.Text("attendance"))
	assert.Equal(t, "Matches found: 1/1 (sansad)\nMatches found: 1/1 (prs)", result.Summary())

	origin := result.Provenance["0"]
	var prsName provenance.Provenance
	for _, p := range origin {
		if p.Target == "prs_sansad_name" {
			prsName = p
		}
	}
	assert.Equal(t, types.SourceID("prs"), prsName.Source)
	assert.Equal(t, "sansad_name", prsName.Field)
	assert.Equal(t, provenance.ReasonReprefixed, prsName.Reason)
	assert.Equal(t, "GURUGRAM:HARYANA", prsName.Key)
}

func TestReconcileNoSecondaries(t *testing.T) {
	result, err := newReconciler(t).Reconcile(context.Background(), mynetaSource(mynetaRecord("A", "Goa", "Goa")))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Len())
	assert.Equal(t, "Records: 1 (no secondary sources)", result.Summary())
}

func TestReconcileKeepPrimaryStrategy(t *testing.T) {
	r := newReconciler(t, reconciler.WithStrategy(reconciler.NewKeepPrimaryStrategy()), reconciler.WithProvenance(false))
	result, err := r.Reconcile(context.Background(),
		mynetaSource(mynetaRecord("A", "Goa", "Goa")),
		sansadSource(sansadRecord("B", "Goa", "GOA")))
	require.NoError(t, err)

	assert.False(t, result.Records[0].Has("sansad_sansad_state"))
	assert.Equal(t, "Goa", result.Records[0].Text("sansad_state"))
	assert.Nil(t, result.Provenance)
}

func TestReconcileCustomKeyBuilder(t *testing.T) {
	c, err := canonical.New(canonical.Config{Separator: "|"})
	require.NoError(t, err)

	result, err := newReconciler(t, reconciler.WithKeyBuilder(c)).Reconcile(context.Background(),
		mynetaSource(mynetaRecord("A", "Gurgaon", "Haryana")),
		sansadSource(sansadRecord("A", "Gurugram", "Haryana")))
	require.NoError(t, err)

	assert.Equal(t, "GURGAON|HARYANA", result.Keys[0])
	stats, _ := result.Stats(types.SansadID)
	assert.Equal(t, 0, stats.Matched, "no aliases configured")
}

func TestReconcileRunIDFromContext(t *testing.T) {
	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithRunID(ctx, "run-42")

	result, err := newReconciler(t).Reconcile(ctx,
		mynetaSource(mynetaRecord("A", "Goa", "Goa")),
		sansadSource(sansadRecord("A", "Goa", "Goa")))
	require.NoError(t, err)

	assert.Equal(t, "run-42", result.Metadata.RunID)
	tl.AssertContains(t, `"run_id":"run-42"`)
	tl.AssertContains(t, "Matches found: 1/1")
}

func TestReconcileValidation(t *testing.T) {
	r := newReconciler(t)
	ctx := context.Background()
	noKeys := sources.NewStatic("bare", nil)
	nameOnly := sources.NewStatic("nameonly", nil, sources.WithKeyFields("n", ""))

	tests := []struct {
		name        string
		primary     sources.Source
		secondaries []sources.Source
		merge       bool
	}{
		{"nil primary", nil, nil, false},
		{"primary without key fields", noKeys, nil, false},
		{"nil secondary", mynetaSource(), []sources.Source{nil}, false},
		{"duplicate id", mynetaSource(), []sources.Source{sansadSource(), sansadSource()}, false},
		{"secondary without key fields", mynetaSource(), []sources.Source{noKeys}, false},
		{"empty prefix", mynetaSource(), []sources.Source{sources.NewStatic("x", nil, sources.WithKeyFields("a", "b"), sources.WithPrefix(""))}, false},
		{"mismatched key shapes", mynetaSource(), []sources.Source{nameOnly}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Reconcile(ctx, tt.primary, tt.secondaries...)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidationError(err))
			var mergeErr *pkgerrors.MergeError
			assert.Equal(t, tt.merge, errors.As(err, &mergeErr))
		})
	}
}

func TestReconcileLoadErrors(t *testing.T) {
	r := newReconciler(t)
	boom := errors.New("disk on fire")

	_, err := r.Reconcile(context.Background(), mynetaSource(), failingSource{Source: sansadSource(), err: boom})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	var resErr *pkgerrors.ResourceError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "sansad", resErr.ID)

	// a failing source cancels the ones still loading
	_, err = r.Reconcile(context.Background(),
		blockingSource{Source: mynetaSource()},
		failingSource{Source: sansadSource(), err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestReconcileCanceled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := newReconciler(t, reconciler.WithConcurrency(1)).Reconcile(ctx, blockingSource{Source: mynetaSource()})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOptionsValidation(t *testing.T) {
	_, err := reconciler.New(reconciler.WithStrategy(nil))
	assert.True(t, pkgerrors.IsValidationError(err))
	_, err = reconciler.New(reconciler.WithKeyBuilder(nil))
	assert.True(t, pkgerrors.IsValidationError(err))
	_, err = reconciler.New(reconciler.WithConcurrency(-1))
	assert.True(t, pkgerrors.IsValidationError(err))
}
