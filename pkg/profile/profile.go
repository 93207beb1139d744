// Package profile projects merged legislator records into publishable
// profiles: display name, title, narrative markdown description, contact
// handles, net worth in crore, and keywords.
//
// Projection never fails. Missing fields leave the matching profile field or
// description section empty, unparseable amounts count as zero, and a
// malformed other-elections list becomes an inline note in the description.
// Each degradation is listed in Profile.Issues.
package profile

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/rollcall/pkg/canonical"
	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/currency"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/records"
)

// Fixed tags appended to every keyword list.
const (
	TagMemberOfParliament = "Member of Parliament"
	TagLokSabha           = "Lok Sabha"
)

// Profile is the publishable view of one merged record.
type Profile struct {
	Name        string   `json:"name" yaml:"name"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Email       string   `json:"email" yaml:"email"`
	Twitter     string   `json:"twitter" yaml:"twitter"`
	Facebook    string   `json:"facebook" yaml:"facebook"`
	Instagram   string   `json:"instagram" yaml:"instagram"`
	LinkedIn    string   `json:"linkedin" yaml:"linkedin"`
	NetWorth    float64  `json:"networth" yaml:"networth"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
	City        string   `json:"city" yaml:"city"`
	State       string   `json:"state" yaml:"state"`
	Party       string   `json:"party" yaml:"party"`
	Position    string   `json:"position,omitempty" yaml:"position,omitempty"`
	PhotoFile   string   `json:"photo_file" yaml:"photo_file"`

	// Issues lists what was degraded while projecting.
	Issues []string `json:"-" yaml:"-"`
}

// Config configures a Projector. Zero values take the defaults.
type Config struct {
	Fields    FieldMap
	Parser    *currency.Parser
	Converter *currency.Converter
	Calendar  TermCalendar
	// Tags are appended to every keyword list.
	Tags []string
}

// DefaultConfig returns the MyNeta/Sansad field map, crore conversion and
// the 18th Lok Sabha calendar.
func DefaultConfig() Config {
	return Config{
		Fields:    DefaultFieldMap(),
		Converter: currency.DefaultConverter(),
		Calendar: TermCalendar{
			LatestTerm:      constants.LatestTerm,
			LatestStartYear: constants.LatestTermStartYear,
			Length:          constants.TermLengthYears,
		},
		Tags: []string{TagMemberOfParliament, TagLokSabha},
	}
}

// Stats counts degradations over the profiles projected so far.
type Stats struct {
	Profiles           int `json:"profiles" yaml:"profiles"`
	UnparseableAmounts int `json:"unparseable_amounts" yaml:"unparseable_amounts"`
	MalformedSections  int `json:"malformed_sections" yaml:"malformed_sections"`
	Fallbacks          int `json:"title_fallbacks" yaml:"title_fallbacks"`
}

// Projector turns merged records into profiles. It is not safe for
// concurrent use because it accumulates Stats.
type Projector struct {
	fields    FieldMap
	parser    *currency.Parser
	converter *currency.Converter
	calendar  TermCalendar
	tags      []string
	stats     Stats
}

// New validates cfg and returns a Projector.
func New(cfg Config) (*Projector, error) {
	def := DefaultConfig()
	p := &Projector{
		fields:    cfg.Fields.merge(def.Fields),
		parser:    cfg.Parser,
		converter: cfg.Converter,
		calendar:  cfg.Calendar,
		tags:      cfg.Tags,
	}
	if p.parser == nil {
		var err error
		if p.parser, err = currency.NewParser(); err != nil {
			return nil, err
		}
	}
	if p.converter == nil {
		p.converter = def.Converter
	}
	if p.calendar == (TermCalendar{}) {
		p.calendar = def.Calendar
	}
	if p.calendar.Length <= 0 {
		return nil, errors.NewValidationError("calendar.length", p.calendar.Length, "term length must be positive")
	}
	if p.calendar.LatestTerm <= 0 {
		return nil, errors.NewValidationError("calendar.latest_term", p.calendar.LatestTerm, "latest term must be positive")
	}
	if p.tags == nil {
		p.tags = def.Tags
	}
	return p, nil
}

// Stats returns the counts accumulated so far.
func (p *Projector) Stats() Stats {
	return p.stats
}

// Project builds the profile of one merged record.
func (p *Projector) Project(rec *records.Record) Profile {
	fm := p.fields
	prof := Profile{
		Name:      get(rec, fm.Name),
		City:      displayName(get(rec, fm.Constituency)),
		State:     displayName(get(rec, fm.State)),
		Party:     get(rec, fm.Party),
		Position:  get(rec, fm.Position),
		Email:     CleanEmail(get(rec, fm.Email)),
		Twitter:   TwitterURL(get(rec, fm.Twitter)),
		Facebook:  get(rec, fm.Facebook),
		Instagram: get(rec, fm.Instagram),
		LinkedIn:  get(rec, fm.LinkedIn),
		PhotoFile: get(rec, fm.PhotoFile),
	}

	prof.Title = prof.Position
	if prof.Title == "" {
		prof.Title = joinNonEmpty(", ", TagMemberOfParliament, prof.City, prof.State)
		p.stats.Fallbacks++
	}

	prof.NetWorth = p.netWorth(get(rec, fm.Assets), get(rec, fm.Liabilities), &prof)
	prof.Keywords = keywords(append([]string{prof.Name, prof.City, prof.State, prof.Party}, p.tags...))

	d := newDescription(p)
	prof.Description = d.build(rec, &prof)
	prof.Issues = append(prof.Issues, d.issues...)
	p.stats.MalformedSections += len(d.issues)
	p.stats.Profiles++
	return prof
}

// ProjectAll projects recs in order.
func (p *Projector) ProjectAll(recs []*records.Record) []Profile {
	out := make([]Profile, len(recs))
	for i, rec := range recs {
		out[i] = p.Project(rec)
	}
	return out
}

// netWorth is assets minus liabilities in the major unit. Either side may
// be unparseable and then counts as zero.
func (p *Projector) netWorth(assets, liabilities string, prof *Profile) float64 {
	a, l := p.parser.Parse(assets), p.parser.Parse(liabilities)
	for _, amt := range []struct {
		name string
		raw  string
		v    currency.Amount
	}{{"assets", assets, a}, {"liabilities", liabilities, l}} {
		if amt.v.Status == currency.Unparseable {
			prof.Issues = append(prof.Issues, amt.name+": unparseable amount "+strconv.Quote(amt.raw))
			p.stats.UnparseableAmounts++
		}
	}
	return p.converter.Signed(a.Value - l.Value)
}

// displayName strips parenthetical annotations such as "(SC)" and tidies
// whitespace. Names written in capitals are title-cased; others keep their case.
func displayName(raw string) string {
	if raw == "" {
		return ""
	}
	s := raw
	for {
		open := strings.IndexByte(s, '(')
		if open < 0 {
			break
		}
		end := strings.IndexByte(s[open:], ')')
		if end < 0 {
			break
		}
		s = s[:open] + " " + s[open+end+1:]
	}
	s = strings.Join(strings.Fields(s), " ")
	if s == strings.ToUpper(s) && s != strings.ToLower(s) {
		s = cases.Title(language.English).String(strings.ToLower(s))
	}
	return s
}

// keywords drops empty and duplicate entries, comparing canonical forms.
func keywords(candidates []string) []string {
	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, k := range candidates {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		id := canonical.Fold(k)
		if id == "" {
			id = k
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, k)
	}
	return out
}
