package reconciler

import (
	"github.com/agentstation/rollcall/pkg/provenance"
	"github.com/agentstation/rollcall/pkg/records"
)

var defaultStrategy = NewRePrefixStrategy()

// Merge joins one secondary record into a copy of primary using the
// re-prefix strategy. When matched is nil the placeholder fields are set to
// "" unless already present. primary is never modified.
func Merge(primary, matched *records.Record, prefix string, placeholders []string) *records.Record {
	acc := primary.Clone()
	if matched == nil {
		fillPlaceholders(acc, placeholders, nil)
		return acc
	}
	mergeInto(acc, matched, prefix, defaultStrategy, nil)
	return acc
}

// trackFunc receives one call per field written by a merge.
type trackFunc func(field, target string, v records.Value, reason provenance.Reason)

// mergeInto writes matched into acc and returns the number of re-prefixed fields.
func mergeInto(acc, matched *records.Record, prefix string, strategy Strategy, track trackFunc) int {
	collisions := 0
	matched.Each(func(field string, v records.Value) {
		target, reason := strategy.Resolve(acc, field, prefix)
		if target == "" {
			return
		}
		if reason == provenance.ReasonReprefixed {
			collisions++
		}
		acc.Set(target, v)
		if track != nil {
			track(field, target, v, reason)
		}
	})
	return collisions
}

func fillPlaceholders(acc *records.Record, placeholders []string, track trackFunc) {
	for _, field := range placeholders {
		if acc.SetDefault(field, records.String("")) && track != nil {
			track(field, field, records.String(""), provenance.ReasonPlaceholder)
		}
	}
}
