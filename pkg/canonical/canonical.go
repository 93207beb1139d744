package canonical

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/records"
)

var (
	parenthetical = regexp.MustCompile(`\([^()]*\)`)
	// \p{Zs} covers the no-break space scraped pages carry for &nbsp;
	byeElection = regexp.MustCompile(`(?i):[\s\p{Zs}]*BYE[\s\p{Zs}-]*ELECTION`)
)

// Name is the canonical form of a raw name.
type Name struct {
	// Value is the canonical token, "" when nothing usable remained.
	Value string
	// ByeElection is set when the raw name carried a ": Bye Election" suffix.
	ByeElection bool
}

// Config configures a Canonicalizer.
type Config struct {
	// Aliases maps a variant spelling to its preferred form. Both sides are
	// canonicalized when the Canonicalizer is built.
	Aliases map[string]string
	// Separator joins the name and region parts of a key.
	Separator string
}

// DefaultConfig returns the built-in alias table and ":" as separator.
func DefaultConfig() Config {
	return Config{
		Aliases:   DefaultAliases(),
		Separator: constants.KeySeparator,
	}
}

// Canonicalizer canonicalizes names and builds join keys.
// It is safe for concurrent use.
type Canonicalizer struct {
	aliases   map[string]string
	separator string
}

// New validates cfg and returns a Canonicalizer.
//
// Every alias key and target is canonicalized first. A target that is empty,
// or that is itself an alias key, is rejected so that canonicalization stays
// idempotent. The separator must contain a rune other than an ASCII letter or
// whitespace, so it can never appear inside a canonical token.
func New(cfg Config) (*Canonicalizer, error) {
	sep := cfg.Separator
	if sep == "" {
		sep = constants.KeySeparator
	}
	if strings.IndexFunc(sep, func(r rune) bool { return !isKept(r) }) < 0 {
		return nil, errors.NewValidationError("separator", sep, "must contain a character other than ASCII letters and whitespace")
	}

	aliases := make(map[string]string, len(cfg.Aliases))
	for rawFrom, rawTo := range cfg.Aliases {
		from, to := normalize(rawFrom).Value, normalize(rawTo).Value
		if from == "" {
			return nil, errors.NewValidationError("aliases", rawFrom, "alias key canonicalizes to an empty name")
		}
		if to == "" {
			return nil, errors.NewValidationError("aliases", rawTo, fmt.Sprintf("alias target for %q canonicalizes to an empty name", from))
		}
		if prev, ok := aliases[from]; ok && prev != to {
			return nil, errors.NewValidationError("aliases", rawFrom, fmt.Sprintf("%q maps to both %q and %q", from, prev, to))
		}
		if from == to {
			continue
		}
		aliases[from] = to
	}

	var chained []string
	for from, to := range aliases {
		if _, ok := aliases[to]; ok {
			chained = append(chained, from+" -> "+to)
		}
	}
	if len(chained) > 0 {
		sort.Strings(chained)
		return nil, errors.NewValidationError("aliases", chained, "alias targets must not be alias keys: "+strings.Join(chained, ", "))
	}

	return &Canonicalizer{aliases: aliases, separator: sep}, nil
}

// Must is like New but panics on an invalid configuration.
func Must(cfg Config) *Canonicalizer {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// Separator returns the key separator.
func (c *Canonicalizer) Separator() string {
	return c.separator
}

// Aliases returns the number of alias entries.
func (c *Canonicalizer) Aliases() int {
	return len(c.aliases)
}

// Canonicalize returns the canonical form of raw.
func (c *Canonicalizer) Canonicalize(raw string) Name {
	n := normalize(raw)
	if to, ok := c.aliases[n.Value]; ok {
		n.Value = to
	}
	return n
}

// String returns only the canonical token of raw.
func (c *Canonicalizer) String(raw string) string {
	return c.Canonicalize(raw).Value
}

// Key returns canonical(name) + separator + canonical(region), or "" when the
// canonical name is empty. An empty region yields a trailing separator.
func (c *Canonicalizer) Key(name, region string) string {
	key, _ := c.KeyOf(name, region)
	return key
}

// KeyOf is Key that also reports whether name carried a bye-election marker.
func (c *Canonicalizer) KeyOf(name, region string) (string, bool) {
	n := c.Canonicalize(name)
	if n.Value == "" {
		return "", n.ByeElection
	}
	return n.Value + c.separator + c.String(region), n.ByeElection
}

// RecordKeyFunc returns a function computing the key of a record from two of
// its fields. An empty regionField keys on the name only.
func (c *Canonicalizer) RecordKeyFunc(nameField, regionField string) func(*records.Record) (string, bool) {
	return func(rec *records.Record) (string, bool) {
		region := ""
		if regionField != "" {
			region = rec.Text(regionField)
		}
		return c.KeyOf(rec.Text(nameField), region)
	}
}

// Fold canonicalizes raw without any alias table.
func Fold(raw string) string {
	return normalize(raw).Value
}

// normalize applies every step except alias substitution.
func normalize(raw string) Name {
	if raw == "" {
		return Name{}
	}

	s := raw
	for {
		stripped := parenthetical.ReplaceAllString(s, " ")
		if stripped == s {
			break
		}
		s = stripped
	}

	var n Name
	if loc := byeElection.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
		n.ByeElection = true
	}

	s = strings.ReplaceAll(s, "&", " and ")
	s = fold(s)
	s = strings.Map(func(r rune) rune {
		if isKept(r) {
			return r
		}
		return ' '
	}, s)

	n.Value = strings.Join(strings.Fields(s), " ")
	return n
}

// fold removes diacritics and uppercases. Transformers carry state, so a
// fresh chain is built per call.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return cases.Upper(language.Und).String(folded)
}

func isKept(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || unicode.IsSpace(r)
}
