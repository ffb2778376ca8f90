package fpc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Marker identifies a structural element of a nomination page
type Marker int

const (
	MarkerWithdraw Marker = iota
	MarkerContest
	MarkerImage
	MarkerSection
	MarkerResult
)

func (m Marker) String() string {
	switch m {
	case MarkerWithdraw:
		return "withdraw"
	case MarkerContest:
		return "contest"
	case MarkerImage:
		return "image"
	case MarkerSection:
		return "section"
	case MarkerResult:
		return "result"
	default:
		return "unknown"
	}
}

// resultPattern matches a recorded closing line, e.g.
//
//	'''result:''' 3 support, 2 oppose, 0 neutral => not featured.
const resultPattern = `'''result:'''\s+(\d+)\s+support,\s+(\d+)\s+oppose,\s+(\d+)\s+neutral\s*=>\s*((?:not )?featured)`

const sectionPattern = `(?m)^={1,4}.+={1,4}\s*$`

// Matcher holds the compiled expressions for one catalogue.
// It is safe for concurrent use.
type Matcher struct {
	votes   map[VoteKind]*regexp.Regexp
	struck  map[VoteKind]*regexp.Regexp
	markers map[Marker]*regexp.Regexp
}

// NewMatcher compiles a catalogue
func NewMatcher(cat *Catalogue) (*Matcher, error) {
	m := &Matcher{
		votes:   make(map[VoteKind]*regexp.Regexp),
		struck:  make(map[VoteKind]*regexp.Regexp),
		markers: make(map[Marker]*regexp.Regexp),
	}

	for _, kind := range VoteKinds {
		aliases := cat.Votes(kind)
		if len(aliases) == 0 {
			return nil, fmt.Errorf("catalogue has no %s aliases", kind)
		}
		token := `\{\{\s*(?:` + alternation(aliases) + `)(\|.*)?\s*\}\}`

		var err error
		if m.votes[kind], err = regexp.Compile(token); err != nil {
			return nil, fmt.Errorf("compile %s pattern: %w", kind, err)
		}
		if m.struck[kind], err = regexp.Compile(`<s>.*` + token + `.*</s>`); err != nil {
			return nil, fmt.Errorf("compile struck %s pattern: %w", kind, err)
		}
	}

	if len(cat.Withdraw) == 0 || len(cat.Contest) == 0 || len(cat.ImageNamespaces) == 0 {
		return nil, fmt.Errorf("catalogue is missing marker aliases")
	}

	namespaces := make([]string, len(cat.ImageNamespaces))
	for i, ns := range cat.ImageNamespaces {
		namespaces[i] = regexp.QuoteMeta(ns)
	}

	// The withdraw template carries an optional reason after the pipe
	patterns := map[Marker]string{
		MarkerWithdraw: `\{\{\s*(?:` + alternation(cat.Withdraw) + `)\s*(\|.*)?\}\}`,
		MarkerContest:  `\{\{\s*(?:` + alternation(cat.Contest) + `)(\|.*)?\}\}`,
		MarkerImage:    `\[\[(?i:` + strings.Join(namespaces, "|") + `):.+\]\]`,
		MarkerSection:  sectionPattern,
		MarkerResult:   resultPattern,
	}
	for marker, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile %s pattern: %w", marker, err)
		}
		m.markers[marker] = re
	}

	return m, nil
}

// MustMatcher is like NewMatcher but panics on a malformed catalogue
func MustMatcher(cat *Catalogue) *Matcher {
	m, err := NewMatcher(cat)
	if err != nil {
		panic(err)
	}
	return m
}

// Count returns the number of vote tokens of a kind, struck or not
func (m *Matcher) Count(kind VoteKind, text string) int {
	re, ok := m.votes[kind]
	if !ok {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}

// CountStruck returns the number of vote tokens of a kind inside <s>...</s>
func (m *Matcher) CountStruck(kind VoteKind, text string) int {
	re, ok := m.struck[kind]
	if !ok {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}

// CountMarker returns the number of occurrences of a structural marker
func (m *Matcher) CountMarker(marker Marker, text string) int {
	re, ok := m.markers[marker]
	if !ok {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}

// PriorResults extracts every result line already present in the text
func (m *Matcher) PriorResults(text string) []PriorResult {
	var out []PriorResult
	for _, g := range m.markers[MarkerResult].FindAllStringSubmatch(text, -1) {
		support, err1 := strconv.Atoi(g[1])
		oppose, err2 := strconv.Atoi(g[2])
		neutral, err3 := strconv.Atoi(g[3])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		out = append(out, PriorResult{
			Votes:    Tally{Support: support, Oppose: oppose, Neutral: neutral},
			Featured: g[4] == "featured",
		})
	}
	return out
}

func alternation(aliases []Alias) string {
	parts := make([]string, 0, len(aliases))
	for _, a := range aliases {
		parts = append(parts, aliasPattern(a))
	}
	return strings.Join(parts, "|")
}

// aliasPattern turns "Support" into "[Ss]upport" when the first letter folds
func aliasPattern(a Alias) string {
	if !a.FoldFirst || a.Name == "" {
		return regexp.QuoteMeta(a.Name)
	}
	r, size := utf8.DecodeRuneInString(a.Name)
	upper, lower := unicode.ToUpper(r), unicode.ToLower(r)
	rest := regexp.QuoteMeta(a.Name[size:])
	if upper == lower {
		return regexp.QuoteMeta(string(r)) + rest
	}
	return "[" + string(upper) + string(lower) + "]" + rest
}
