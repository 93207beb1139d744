package profile

import (
	"fmt"
	"strconv"
	"strings"
)

// Term is one Lok Sabha term with its years.
type Term struct {
	Number    int
	StartYear int
	// EndYear is 0 for the current term.
	EndYear int
}

// Current reports whether the term is the latest one.
func (t Term) Current() bool {
	return t.EndYear == 0
}

// String renders "18th Lok Sabha (2024 - current)".
func (t Term) String() string {
	end := "current"
	if !t.Current() {
		end = strconv.Itoa(t.EndYear)
	}
	return fmt.Sprintf("%s Lok Sabha (%d - %s)", ordinal(t.Number), t.StartYear, end)
}

// TermCalendar maps term numbers to years.
type TermCalendar struct {
	LatestTerm      int `yaml:"latest_term" mapstructure:"latest_term"`
	LatestStartYear int `yaml:"latest_start_year" mapstructure:"latest_start_year"`
	Length          int `yaml:"length" mapstructure:"length"`
}

// Term returns the years of term n. Term n starts
// LatestStartYear - (LatestTerm - n) * Length.
func (c TermCalendar) Term(n int) Term {
	start := c.LatestStartYear - (c.LatestTerm-n)*c.Length
	t := Term{Number: n, StartYear: start}
	if n != c.LatestTerm {
		t.EndYear = start + c.Length
	}
	return t
}

// Parse reads a comma-separated term list such as "16, 17,18". Tokens that
// are not numbers are skipped.
func (c TermCalendar) Parse(raw string) []Term {
	var terms []Term
	for _, tok := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			continue
		}
		terms = append(terms, c.Term(n))
	}
	return terms
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
