package reconciler

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/rollcall/pkg/provenance"
	"github.com/agentstation/rollcall/pkg/records"
	"github.com/agentstation/rollcall/pkg/types"
)

// Result represents the outcome of a reconciliation run.
type Result struct {
	// Records are the merged records in primary order.
	Records []*records.Record

	// Keys holds the join key of each merged record, "" when it had none.
	Keys []string

	// Schema is the sorted union of field names over Records.
	Schema []string

	// Primary describes the primary source.
	Primary SourceStats

	// Secondaries describes each secondary source in join order.
	Secondaries []SourceStats

	// Provenance maps record index to the origin of its fields.
	Provenance provenance.Map

	Metadata ResultMetadata
}

// ResultMetadata contains metadata about the run.
type ResultMetadata struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Sources   []types.SourceID
	Strategy  StrategyType
}

// SourceStats holds per-source counts. They are for operator visibility only.
//
// For a secondary source, Matched + Unmatched == Total, where Total is the
// number of primary records. DistinctMatched counts secondary records that
// matched at least once and never exceeds min(primary, secondary).
type SourceStats struct {
	Source types.SourceID `json:"source" yaml:"source"`

	Records      int `json:"records" yaml:"records"`
	EmptyKeys    int `json:"empty_keys" yaml:"empty_keys"`
	ByeElections int `json:"bye_elections" yaml:"bye_elections"`
	Shadowed     int `json:"shadowed_duplicates" yaml:"shadowed_duplicates"`

	Total           int `json:"total" yaml:"total"`
	Matched         int `json:"matched" yaml:"matched"`
	Unmatched       int `json:"unmatched" yaml:"unmatched"`
	DistinctMatched int `json:"distinct_matched" yaml:"distinct_matched"`
	Collisions      int `json:"collisions" yaml:"collisions"`
}

// MatchRate returns Matched / Total, or 0 with no primary records.
func (s SourceStats) MatchRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Matched) / float64(s.Total)
}

// Stats returns the statistics of a source by ID.
func (r *Result) Stats(id types.SourceID) (SourceStats, bool) {
	if r.Primary.Source == id {
		return r.Primary, true
	}
	for _, s := range r.Secondaries {
		if s.Source == id {
			return s, true
		}
	}
	return SourceStats{}, false
}

// Len returns the number of merged records.
func (r *Result) Len() int {
	return len(r.Records)
}

// Summary returns one "Matches found: m/n" line per secondary source.
func (r *Result) Summary() string {
	if len(r.Secondaries) == 0 {
		return fmt.Sprintf("Records: %d (no secondary sources)", len(r.Records))
	}
	lines := make([]string, 0, len(r.Secondaries))
	for _, s := range r.Secondaries {
		line := fmt.Sprintf("Matches found: %d/%d", s.Matched, s.Total)
		if len(r.Secondaries) > 1 {
			line += " (" + s.Source.String() + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func newResult(runID string) *Result {
	return &Result{
		Provenance: make(provenance.Map),
		Metadata: ResultMetadata{
			RunID:     runID,
			StartTime: time.Now(),
		},
	}
}

// finalize computes the schema and duration.
func (r *Result) finalize() {
	r.Schema = records.Schema(r.Records)
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}
