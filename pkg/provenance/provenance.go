// Package provenance records where every field of a merged record came from.
//
// The reconciler tracks one entry per field it writes: the source, the field
// name in that source, the name it was written under, the join key that
// matched, and why it was written that way (copied from the primary, merged
// verbatim, re-prefixed after a collision, or filled as a placeholder).
package provenance

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/types"
)

// Reason explains how a field ended up in a merged record.
type Reason string

// Reasons recorded by the reconciler.
const (
	ReasonPrimary     Reason = "primary"
	ReasonVerbatim    Reason = "verbatim"
	ReasonReprefixed  Reason = "reprefixed"
	ReasonPlaceholder Reason = "placeholder"
)

// Provenance describes the origin of one merged field.
type Provenance struct {
	Source    types.SourceID `yaml:"source" json:"source"`
	Field     string         `yaml:"field" json:"field"`
	Target    string         `yaml:"target" json:"target"`
	Key       string         `yaml:"key,omitempty" json:"key,omitempty"`
	Value     string         `yaml:"value,omitempty" json:"value,omitempty"`
	Reason    Reason         `yaml:"reason" json:"reason"`
	Timestamp time.Time      `yaml:"timestamp" json:"timestamp"`
}

// Map holds provenance per merged record, keyed by record ID.
type Map map[string][]Provenance

// Tracker collects provenance during reconciliation.
type Tracker interface {
	// Track records provenance for a field of a record.
	Track(recordID string, p Provenance)

	// FindByField returns the provenance of one field of a record.
	FindByField(recordID, field string) []Provenance

	// FindByRecord returns every entry of a record in tracking order.
	FindByRecord(recordID string) []Provenance

	// Map returns a copy of everything tracked.
	Map() Map

	// Clear removes all provenance data.
	Clear()
}

type tracker struct {
	mu         sync.RWMutex
	provenance Map
	enabled    bool
}

// NewTracker creates a tracker. A disabled tracker ignores Track and returns nil maps.
func NewTracker(enabled bool) Tracker {
	return &tracker{
		provenance: make(Map),
		enabled:    enabled,
	}
}

func (p *tracker) Track(recordID string, history Provenance) {
	if !p.enabled {
		return
	}
	if history.Timestamp.IsZero() {
		history.Timestamp = time.Now()
	}
	p.mu.Lock()
	p.provenance[recordID] = append(p.provenance[recordID], history)
	p.mu.Unlock()
}

func (p *tracker) FindByField(recordID, field string) []Provenance {
	if !p.enabled {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	var found []Provenance
	for _, info := range p.provenance[recordID] {
		if info.Target == field {
			found = append(found, info)
		}
	}
	return found
}

func (p *tracker) FindByRecord(recordID string) []Provenance {
	if !p.enabled {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Provenance(nil), p.provenance[recordID]...)
}

func (p *tracker) Map() Map {
	if !p.enabled {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	result := make(Map, len(p.provenance))
	for k, v := range p.provenance {
		result[k] = append([]Provenance{}, v...)
	}
	return result
}

func (p *tracker) Clear() {
	p.mu.Lock()
	p.provenance = make(Map)
	p.mu.Unlock()
}

// Report summarizes a provenance map.
type Report struct {
	Records  []RecordProvenance `yaml:"records"`
	BySource map[string]int     `yaml:"by_source"`
	ByReason map[Reason]int     `yaml:"by_reason"`
}

// RecordProvenance holds the entries of one merged record.
type RecordProvenance struct {
	ID     string       `yaml:"id"`
	Fields []Provenance `yaml:"fields"`
}

// GenerateReport builds a report with records sorted by ID.
func GenerateReport(provenance Map) *Report {
	report := &Report{
		BySource: make(map[string]int),
		ByReason: make(map[Reason]int),
	}

	ids := make([]string, 0, len(provenance))
	for id := range provenance {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})

	for _, id := range ids {
		fields := provenance[id]
		for _, f := range fields {
			report.BySource[f.Source.String()]++
			report.ByReason[f.Reason]++
		}
		report.Records = append(report.Records, RecordProvenance{ID: id, Fields: fields})
	}
	return report
}

// Collisions returns the re-prefixed entries of every record.
func (r *Report) Collisions() []Provenance {
	var out []Provenance
	for _, rec := range r.Records {
		for _, f := range rec.Fields {
			if f.Reason == ReasonReprefixed {
				out = append(out, f)
			}
		}
	}
	return out
}

// String renders the report for humans. Only non-primary fields are listed.
func (r *Report) String() string {
	var sb strings.Builder

	sb.WriteString("Provenance Report\n")
	sb.WriteString("=================\n\n")

	sources := make([]string, 0, len(r.BySource))
	for s := range r.BySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	for _, s := range sources {
		sb.WriteString(fmt.Sprintf("%-12s %d fields\n", s, r.BySource[s]))
	}
	sb.WriteString("\n")

	for _, rec := range r.Records {
		var merged []Provenance
		for _, f := range rec.Fields {
			if f.Reason != ReasonPrimary {
				merged = append(merged, f)
			}
		}
		if len(merged) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("record %s\n", rec.ID))
		sb.WriteString(strings.Repeat("-", 40))
		sb.WriteString("\n")
		for _, f := range merged {
			if f.Field != f.Target {
				sb.WriteString(fmt.Sprintf("  %s <- %s.%s (%s)\n", f.Target, f.Source, f.Field, f.Reason))
			} else {
				sb.WriteString(fmt.Sprintf("  %s <- %s (%s)\n", f.Target, f.Source, f.Reason))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// ProvenanceFile represents a provenance file stored on disk.
//
//nolint:revive // Name is intentionally descriptive for external clarity
type ProvenanceFile struct {
	RunID      string `yaml:"run_id,omitempty"`
	Provenance Map    `yaml:"provenance"`
}

// Save writes the file as YAML.
func (f *ProvenanceFile) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Load reads provenance data from a YAML file.
// Returns nil, nil if the file doesn't exist.
func Load(path string) (*ProvenanceFile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var pf ProvenanceFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	return &pf, nil
}
