package fpc

import (
	"time"

	"golang.org/x/text/unicode/norm"
)

// Tally holds one count per vote kind
type Tally struct {
	Support int
	Oppose  int
	Neutral int
}

// Get returns the count for a kind
func (t Tally) Get(kind VoteKind) int {
	switch kind {
	case Support:
		return t.Support
	case Oppose:
		return t.Oppose
	case Neutral:
		return t.Neutral
	default:
		return 0
	}
}

func (t *Tally) set(kind VoteKind, n int) {
	switch kind {
	case Support:
		t.Support = n
	case Oppose:
		t.Oppose = n
	case Neutral:
		t.Neutral = n
	}
}

// PriorResult is a result line that was appended to the page when it was closed
type PriorResult struct {
	Votes    Tally
	Featured bool
}

// Nomination is one candidate page as read at a single point in time.
// Text is treated as immutable; counts are derived from it once and cached.
type Nomination struct {
	Title string
	Text  string

	// CreatedAt is the timestamp of the first revision, when HasCreated is set
	CreatedAt  time.Time
	HasCreated bool

	matcher *Matcher
	scanned *scan
	scans   int
}

type scan struct {
	votes    Tally // struck votes already subtracted
	struck   Tally
	images   int
	sections int
	withdraw int
	contest  int
	results  []PriorResult
}

// NewNomination builds a nomination from a page snapshot. The text is NFC
// normalized so that decomposed accents still match the catalogue.
func NewNomination(m *Matcher, title, text string) *Nomination {
	return &Nomination{
		Title:   title,
		Text:    norm.NFC.String(text),
		matcher: m,
	}
}

// WithCreated records the creation instant of the page
func (n *Nomination) WithCreated(t time.Time) *Nomination {
	n.CreatedAt = t
	n.HasCreated = true
	return n
}

func (n *Nomination) scan() *scan {
	if n.scanned != nil {
		return n.scanned
	}
	n.scans++

	s := &scan{}
	for _, kind := range VoteKinds {
		raw := n.matcher.Count(kind, n.Text)
		struck := n.matcher.CountStruck(kind, n.Text)
		s.struck.set(kind, struck)
		s.votes.set(kind, max(raw-struck, 0))
	}
	s.images = n.matcher.CountMarker(MarkerImage, n.Text)
	s.sections = n.matcher.CountMarker(MarkerSection, n.Text)
	s.withdraw = n.matcher.CountMarker(MarkerWithdraw, n.Text)
	s.contest = n.matcher.CountMarker(MarkerContest, n.Text)
	s.results = n.matcher.PriorResults(n.Text)

	n.scanned = s
	return s
}

// CountVotes returns the vote counts with struck votes subtracted
func (n *Nomination) CountVotes() Tally {
	return n.scan().votes
}

// StruckVotes returns how many votes of each kind were struck out
func (n *Nomination) StruckVotes() Tally {
	return n.scan().struck
}

// ImageCount counts the number of images that are displayed
func (n *Nomination) ImageCount() int {
	return n.scan().images
}

func (n *Nomination) SectionCount() int {
	return n.scan().sections
}

func (n *Nomination) IsWithdrawn() bool {
	return n.scan().withdraw > 0
}

// IsContested reports whether the page carries the FPX template
func (n *Nomination) IsContested() bool {
	return n.scan().contest > 0
}

// PriorResults returns the result lines found on the page, normally zero or one
func (n *Nomination) PriorResults() []PriorResult {
	return n.scan().results
}
