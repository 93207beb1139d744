// Package currency parses free-text rupee amounts such as
// "Rs 65,67,12,498 ~ 65 Crore+" and converts base-unit amounts to a major
// unit (crore by default).
//
// Parsing never fails. Input that yields no number degrades to zero, and the
// Amount status records why, so callers that need to tell "Nil" from
// "garbage" can.
package currency

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/errors"
)

// Status describes how an Amount was obtained.
type Status uint8

const (
	// Parsed means a number was found after a currency marker.
	Parsed Status = iota
	// Empty means the input was blank.
	Empty
	// Nil means the input was the literal "Nil".
	Nil
	// Unparseable means no marker followed by digits was found.
	Unparseable
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case Parsed:
		return "parsed"
	case Empty:
		return "empty"
	case Nil:
		return "nil"
	default:
		return "unparseable"
	}
}

// Amount is a parsed base-unit amount.
type Amount struct {
	Value  float64
	Status Status
}

// OK reports whether the value came from digits in the input.
func (a Amount) OK() bool {
	return a.Status == Parsed
}

// DefaultMarkers are the currency markers recognized by default.
var DefaultMarkers = []string{"Rs.", "Rs", "INR", "₹"}

// Parser extracts amounts from free text.
type Parser struct {
	re *regexp.Regexp
}

// NewParser returns a parser recognizing the given markers (case-insensitive).
func NewParser(markers ...string) (*Parser, error) {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	trimmed := make([]string, 0, len(markers))
	for _, m := range markers {
		m = strings.TrimSpace(m)
		if m == "" {
			return nil, errors.NewValidationError("markers", markers, "currency marker must not be blank")
		}
		trimmed = append(trimmed, m)
	}
	// longer markers first so "Rs." wins over "Rs"
	slices.SortStableFunc(trimmed, func(a, b string) int { return len(b) - len(a) })
	quoted := make([]string, len(trimmed))
	for i, m := range trimmed {
		quoted[i] = regexp.QuoteMeta(m)
		// a marker starting with a letter must not continue a word ("Cars 1,000")
		if r, _ := utf8.DecodeRuneInString(m); unicode.IsLetter(r) {
			quoted[i] = `(?:^|[^\p{L}\p{N}])` + quoted[i]
		}
	}
	re, err := regexp.Compile(`(?i)(?:` + strings.Join(quoted, "|") + `)[\s\p{Zs}]*([0-9]+(?:,[0-9]+)*)`)
	if err != nil {
		return nil, errors.WrapValidation("markers", err)
	}
	return &Parser{re: re}, nil
}

var defaultParser, _ = NewParser()

// Parse extracts the first marked amount from raw. Everything from the first
// "~" on is ignored.
func (p *Parser) Parse(raw string) Amount {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Amount{Status: Empty}
	}
	if i := strings.Index(s, "~"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if strings.EqualFold(s, "nil") {
		return Amount{Status: Nil}
	}
	m := p.re.FindStringSubmatch(s)
	if m == nil {
		return Amount{Status: Unparseable}
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
	if err != nil {
		return Amount{Status: Unparseable}
	}
	return Amount{Value: float64(n), Status: Parsed}
}

// Parse uses the default markers.
func Parse(raw string) Amount {
	return defaultParser.Parse(raw)
}

// ParseAmount returns only the value, 0 when nothing could be parsed.
func ParseAmount(raw string) float64 {
	return defaultParser.Parse(raw).Value
}

// Converter scales base-unit amounts to a major unit.
type Converter struct {
	ratio     float64
	precision int
}

// NewConverter validates ratio and precision.
func NewConverter(ratio float64, precision int) (*Converter, error) {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return nil, errors.NewValidationError("ratio", ratio, "must be a positive finite number")
	}
	if precision < 0 || precision > 15 {
		return nil, errors.NewValidationError("precision", precision, "must be between 0 and 15")
	}
	return &Converter{ratio: ratio, precision: precision}, nil
}

// DefaultConverter converts rupees to crore at two decimals.
func DefaultConverter() *Converter {
	return &Converter{ratio: constants.CroreRatio, precision: constants.AmountPrecision}
}

// ToMajorUnit returns amount / ratio rounded half to even. NaN, infinities and
// non-positive amounts yield 0.
func (c *Converter) ToMajorUnit(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0
	}
	return c.round(amount / c.ratio)
}

// Signed is ToMajorUnit for amounts that may be negative.
func (c *Converter) Signed(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	if amount < 0 {
		if v := c.ToMajorUnit(-amount); v != 0 {
			return -v
		}
		return 0
	}
	return c.ToMajorUnit(amount)
}

func (c *Converter) round(v float64) float64 {
	scale := math.Pow10(c.precision)
	r := math.RoundToEven(v*scale) / scale
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}
