package reconciler_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/agentstation/rollcall/pkg/logging"
	"github.com/agentstation/rollcall/pkg/records"
	"github.com/agentstation/rollcall/pkg/sources"
	"github.com/agentstation/rollcall/pkg/types"
)

func TestMain(m *testing.M) {
	logging.SetDefault(*logging.NewNopLogger())
	goleak.VerifyTestMain(m)
}

// field is one ordered entry of a record, for cmp diffs.
type field struct {
	Name  string
	Value string
}

var recordFields = cmp.Transformer("fields", func(r *records.Record) []field {
	var out []field
	r.Each(func(name string, v records.Value) {
		out = append(out, field{Name: name, Value: v.Text()})
	})
	return out
})

func assertRecord(t *testing.T, want, got *records.Record) {
	t.Helper()
	if diff := cmp.Diff(want, got, recordFields); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func mynetaRecord(candidate, constituency, state string) *records.Record {
	return records.FromPairs(
		"myneta_candidate", candidate,
		"myneta_constituency", constituency,
		"sansad_state", state,
	)
}

func sansadRecord(name, constituency, state string) *records.Record {
	return records.FromPairs(
		"sansad_name", name,
		"sansad_constituency", constituency,
		"sansad_state", state,
	)
}

func mynetaSource(recs ...*records.Record) sources.Source {
	return sources.NewStatic(types.MyNetaID, recs,
		sources.WithKeyFields("myneta_constituency", "sansad_state"))
}

func sansadSource(recs ...*records.Record) sources.Source {
	return sources.NewStatic(types.SansadID, recs,
		sources.WithKeyFields("sansad_constituency", "sansad_state"),
		sources.WithPlaceholders("sansad_name", "sansad_email"))
}

// failingSource fails on Records.
type failingSource struct {
	sources.Source
	err error
}

func (f failingSource) Records(context.Context) ([]*records.Record, error) {
	return nil, f.err
}

// blockingSource waits for cancellation.
type blockingSource struct {
	sources.Source
}

func (b blockingSource) Records(ctx context.Context) ([]*records.Record, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
