package profile

import (
	"encoding/json"
	"fmt"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/rollcall/pkg/currency"
	"github.com/agentstation/rollcall/pkg/records"
)

// otherElectionColumns are the keys of one other-elections entry, with the
// table header used for each.
var otherElectionColumns = []struct {
	key    string
	header string
	amount bool
}{
	{"Election Name", "Election", false},
	{"Constituency", "Constituency", false},
	{"Party Code", "Party", false},
	{"Criminal Cases", "Criminal Cases", false},
	{"Education Level", "Education", false},
	{"Total Assets", "Assets (Cr)", true},
	{"Total Liabilities", "Liabilities (Cr)", true},
}

// description assembles the narrative markdown of one profile. Sections are
// written only when their source fields are non-empty.
type description struct {
	p      *Projector
	md     *md.Markdown
	buf    *strings.Builder
	issues []string
}

func newDescription(p *Projector) *description {
	buf := &strings.Builder{}
	return &description{p: p, md: md.NewMarkdown(buf), buf: buf}
}

func (d *description) build(rec *records.Record, prof *Profile) string {
	fm := d.p.fields

	d.intro(prof)
	d.addresses(get(rec, fm.PresentAddress), get(rec, fm.PermanentAddress))
	if edu := get(rec, fm.Education); edu != "" {
		d.md.H2("Education").PlainText(strings.ReplaceAll(edu, "<br>", " ")).LF()
	}
	d.otherElections(get(rec, fm.OtherElections))
	d.terms(get(rec, fm.Terms))
	d.links(rec, prof)

	if err := d.md.Build(); err != nil {
		d.issues = append(d.issues, "description: "+err.Error())
		return ""
	}
	return strings.TrimSpace(d.buf.String())
}

func (d *description) intro(prof *Profile) {
	if prof.Name == "" {
		return
	}
	var sb strings.Builder
	sb.WriteString(md.Bold(prof.Name))
	sb.WriteString(" is a Member of Parliament in the Lok Sabha")
	if seat := joinNonEmpty(", ", prof.City, prof.State); seat != "" {
		sb.WriteString(" representing " + seat)
	}
	sb.WriteString(".")
	if prof.Party != "" {
		sb.WriteString(" Party: " + prof.Party + ".")
	}
	if prof.Position != "" {
		sb.WriteString(" Current position: " + prof.Position + ".")
	}
	d.md.PlainText(sb.String()).LF()
}

func (d *description) addresses(present, permanent string) {
	var items []string
	if present != "" {
		items = append(items, "Present address: "+present)
	}
	if permanent != "" {
		items = append(items, "Permanent address: "+permanent)
	}
	if len(items) == 0 {
		return
	}
	d.md.H2("Addresses").BulletList(items...).LF()
}

// otherElections renders earlier contests as a table. Malformed input is
// reported inline and does not affect the other sections.
func (d *description) otherElections(raw string) {
	if raw == "" {
		return
	}
	var entries []map[string]any
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		d.issues = append(d.issues, "other elections: "+err.Error())
		d.md.H2("Other Elections").PlainText("_Other elections unavailable: " + err.Error() + "_").LF()
		return
	}
	if len(entries) == 0 {
		return
	}

	headers := make([]string, len(otherElectionColumns))
	for i, col := range otherElectionColumns {
		headers[i] = col.header
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := make([]string, len(otherElectionColumns))
		for i, col := range otherElectionColumns {
			text := records.FromAny(e[col.key]).Text()
			if col.amount {
				amount := d.p.parser.Parse(text)
				if amount.Status == currency.Unparseable {
					d.p.stats.UnparseableAmounts++
				}
				text = fmt.Sprintf("%.2f", d.p.converter.ToMajorUnit(amount.Value))
			}
			row[i] = text
		}
		rows = append(rows, row)
	}
	d.md.H2("Other Elections").Table(md.TableSet{Header: headers, Rows: rows}).LF()
}

func (d *description) terms(raw string) {
	if raw == "" {
		return
	}
	terms := d.p.calendar.Parse(raw)
	if len(terms) == 0 {
		return
	}
	items := make([]string, len(terms))
	for i, t := range terms {
		items[i] = t.String()
	}
	d.md.H2("Lok Sabha Terms").BulletList(items...).LF()
}

func (d *description) links(rec *records.Record, prof *Profile) {
	var items []string
	for _, l := range d.p.fields.Links {
		if url := strings.TrimSpace(rec.Text(l.Field)); url != "" {
			items = append(items, md.Link(l.Label, url))
		}
	}
	for _, social := range []struct{ label, url string }{
		{"X", prof.Twitter},
		{"Facebook", prof.Facebook},
		{"Instagram", prof.Instagram},
		{"LinkedIn", prof.LinkedIn},
	} {
		if social.url != "" {
			items = append(items, md.Link(social.label, social.url))
		}
	}
	if len(items) == 0 {
		return
	}
	d.md.H2("Profiles").BulletList(items...).LF()
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
