package reconciler_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agentstation/rollcall/pkg/reconciler"
	"github.com/agentstation/rollcall/pkg/records"
	"github.com/agentstation/rollcall/pkg/types"
)

var seats = []string{"Goa North", "South Goa", "Ananthapur", "Gurgaon", "Gurugram", "Mandya", "(SC)", ""}

func seatGen() gopter.Gen {
	return oneOf(seats...)
}

func oneOf(values ...string) gopter.Gen {
	return gen.IntRange(0, len(values)-1).Map(func(i int) string { return values[i] })
}

func TestMergeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("merge never drops or overwrites a value", prop.ForAll(
		func(primaryFields, secondaryFields []string) bool {
			primary := records.New(len(primaryFields))
			for i, f := range primaryFields {
				primary.Set(f, records.String(fmt.Sprintf("p%d", i)))
			}
			secondary := records.New(len(secondaryFields))
			for i, f := range secondaryFields {
				secondary.Set(f, records.String(fmt.Sprintf("s%d", i)))
			}

			merged := reconciler.Merge(primary, secondary, "sec", nil)
			if merged.Len() != primary.Len()+secondary.Len() {
				return false
			}
			ok := true
			primary.Each(func(name string, v records.Value) {
				if got, _ := merged.Get(name); got != v {
					ok = false
				}
			})
			return ok
		},
		gen.SliceOf(oneOf("x", "y", "sec_x", "z")),
		gen.SliceOf(oneOf("x", "y", "sec_x", "w")),
	))

	properties.Property("match counts are consistent", prop.ForAll(
		func(primarySeats, secondarySeats []string) bool {
			primary := make([]*records.Record, len(primarySeats))
			for i, s := range primarySeats {
				primary[i] = mynetaRecord(fmt.Sprintf("P%d", i), s, "Goa")
			}
			secondary := make([]*records.Record, len(secondarySeats))
			for i, s := range secondarySeats {
				secondary[i] = sansadRecord(fmt.Sprintf("S%d", i), s, "GOA")
			}

			r, err := reconciler.New(reconciler.WithProvenance(false))
			if err != nil {
				return false
			}
			result, err := r.Reconcile(context.Background(), mynetaSource(primary...), sansadSource(secondary...))
			if err != nil {
				return false
			}
			stats, _ := result.Stats(types.SansadID)
			limit := min(len(primary), len(secondary))
			return stats.Matched+stats.Unmatched == stats.Total &&
				stats.Total == len(primary) &&
				stats.DistinctMatched <= limit &&
				result.Len() == len(primary)
		},
		gen.SliceOf(seatGen()),
		gen.SliceOf(seatGen()),
	))

	properties.TestingRun(t)
}
