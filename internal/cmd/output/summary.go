package output

import (
	"io"
	"strconv"

	"github.com/agentstation/rollcall/pkg/profile"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

// Tabular is implemented by values with their own table layout.
type Tabular interface {
	TableData() Data
}

// Write formats data in the given format. Tabular values use their own
// layout in table format.
func Write(w io.Writer, format Format, data any) error {
	if t, ok := data.(Tabular); ok && (format == FormatTable || format == "") {
		data = t.TableData()
	}
	return NewFormatter(format).Format(w, data)
}

// RunSummary is the printed outcome of a merge run.
type RunSummary struct {
	RunID    string                   `json:"run_id" yaml:"run_id"`
	Matches  string                   `json:"matches" yaml:"matches"`
	Duration string                   `json:"duration" yaml:"duration"`
	Sources  []reconciler.SourceStats `json:"sources" yaml:"sources"`
	Profiles *profile.Stats           `json:"profiles,omitempty" yaml:"profiles,omitempty"`
	Outputs  []string                 `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// NewRunSummary summarizes a result. stats may be nil when no profiles were
// projected.
func NewRunSummary(r *reconciler.Result, stats *profile.Stats, outputs []string) RunSummary {
	return RunSummary{
		RunID:    r.Metadata.RunID,
		Matches:  r.Summary(),
		Duration: r.Metadata.Duration.String(),
		Sources:  append([]reconciler.SourceStats{r.Primary}, r.Secondaries...),
		Profiles: stats,
		Outputs:  outputs,
	}
}

// TableData lays the per-source counts out as a table. The primary source
// has no match columns.
func (s RunSummary) TableData() Data {
	data := Data{
		Headers: []string{"Source", "Records", "Empty Keys", "Bye-elections", "Shadowed", "Matched", "Unmatched", "Match Rate", "Collisions"},
		ColumnAlignment: []Align{
			AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight,
			AlignRight, AlignRight, AlignRight, AlignRight,
		},
	}
	for i, st := range s.Sources {
		row := []string{
			st.Source.String(),
			strconv.Itoa(st.Records),
			strconv.Itoa(st.EmptyKeys),
			strconv.Itoa(st.ByeElections),
			"-", "-", "-", "-", "-",
		}
		if i > 0 {
			row[4] = strconv.Itoa(st.Shadowed)
			row[5] = strconv.Itoa(st.Matched)
			row[6] = strconv.Itoa(st.Unmatched)
			row[7] = strconv.FormatFloat(st.MatchRate()*100, 'f', 1, 64) + "%"
			row[8] = strconv.Itoa(st.Collisions)
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}
