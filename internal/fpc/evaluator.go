package fpc

import (
	"fmt"
	"time"

	"github.com/pmezard/go-difflib/difflib"
)

// Status is the state of a nomination at evaluation time. It is never stored
// on the page; it is recomputed from the text and the clock on every run.
type Status int

const (
	StatusActive Status = iota
	StatusWithdrawn
	StatusIgnored
	StatusFeatured
	StatusNotFeatured
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusWithdrawn:
		return "Withdrawn"
	case StatusIgnored:
		return "Ignored"
	case StatusFeatured:
		return "Featured"
	case StatusNotFeatured:
		return "Not featured"
	default:
		return "Unknown"
	}
}

// Policy holds the closing thresholds
type Policy struct {
	MinAgeDays   int // nominations younger than this stay open
	MinSupport   int
	SupportRatio int // support must be at least this many times oppose
}

// DefaultPolicy returns the current Commons featured picture rules
func DefaultPolicy() Policy {
	return Policy{
		MinAgeDays:   9,
		MinSupport:   5,
		SupportRatio: 2,
	}
}

// Skip reasons reported for nominations that are not closed
const (
	ReasonTooYoung       = "too young, still active"
	ReasonMultipleImages = "contains multiple images, ignoring"
	ReasonWithdrawn      = "withdrawn, currently ignoring"
	ReasonContested      = "contains FPX, currently ignoring"
)

// Evaluation is everything the bot reports about one nomination
type Evaluation struct {
	Title     string
	Status    Status
	Votes     Tally
	Struck    Tally
	AgeDays   int
	Images    int
	Sections  int
	Withdrawn bool
	Contested bool
	Featured  bool

	// Closeable nominations get a result annotation; Reason says why the others do not
	Closeable bool
	Reason    string
}

// Evaluator applies a Policy to nominations. Now is the clock used for ages.
type Evaluator struct {
	Policy Policy
	Now    func() time.Time
}

// NewEvaluator creates an evaluator using the wall clock
func NewEvaluator(p Policy) *Evaluator {
	return &Evaluator{Policy: p, Now: time.Now}
}

// AgeDays returns the age of a nomination in whole days. A nomination without
// a known creation time is treated as created now so that it reads as too young.
func (e *Evaluator) AgeDays(n *Nomination) int {
	now := e.Now()
	created := now
	if n.HasCreated {
		created = n.CreatedAt
	}
	return AgeDays(created, now)
}

// IsFeatured applies the vote rule without looking at the age.
// A withdrawn nomination is never featured.
func (e *Evaluator) IsFeatured(n *Nomination) bool {
	if n.IsWithdrawn() {
		return false
	}
	v := n.CountVotes()
	return v.Support >= e.Policy.MinSupport && v.Support >= e.Policy.SupportRatio*v.Oppose
}

// Evaluate computes the status of a nomination
func (e *Evaluator) Evaluate(n *Nomination) Evaluation {
	ev := Evaluation{
		Title:     n.Title,
		Votes:     n.CountVotes(),
		Struck:    n.StruckVotes(),
		AgeDays:   e.AgeDays(n),
		Images:    n.ImageCount(),
		Sections:  n.SectionCount(),
		Withdrawn: n.IsWithdrawn(),
		Contested: n.IsContested(),
		Featured:  e.IsFeatured(n),
	}
	done := ev.AgeDays >= e.Policy.MinAgeDays

	switch {
	case ev.Withdrawn:
		ev.Status = StatusWithdrawn
	case ev.Images > 1:
		ev.Status = StatusIgnored
	case !done:
		ev.Status = StatusActive
	case ev.Featured:
		ev.Status = StatusFeatured
	default:
		ev.Status = StatusNotFeatured
	}

	// Contested pages keep their normal status but are never closed
	switch {
	case !done:
		ev.Reason = fmt.Sprintf("%s (%d days)", ReasonTooYoung, ev.AgeDays)
	case ev.Images > 1:
		ev.Reason = ReasonMultipleImages
	case ev.Withdrawn:
		ev.Reason = ReasonWithdrawn
	case ev.Contested:
		ev.Reason = ReasonContested
	default:
		ev.Closeable = true
	}

	return ev
}

// Proposal is the edit the bot would make to close a nomination
type Proposal struct {
	Title      string
	Annotation string
	OldText    string
	NewText    string
	Diff       string
	Evaluation Evaluation
}

// ResultAnnotation renders the result template appended to a closed nomination
func ResultAnnotation(votes Tally, featured bool) string {
	verdict := "no"
	if featured {
		verdict = "yes"
	}
	return fmt.Sprintf("\n\n{{FPC-results-ready-for-review|support=%d|oppose=%d|neutral=%d|featured=%s|sig=~~~~}}",
		votes.Support, votes.Oppose, votes.Neutral, verdict)
}

// ProposeClose returns the closing edit for a closeable nomination. The second
// return value is false, with the evaluation's Reason explaining why, otherwise.
func (e *Evaluator) ProposeClose(n *Nomination) (*Proposal, Evaluation, bool) {
	ev := e.Evaluate(n)
	if !ev.Closeable {
		return nil, ev, false
	}

	annotation := ResultAnnotation(ev.Votes, ev.Featured)
	p := &Proposal{
		Title:      n.Title,
		Annotation: annotation,
		OldText:    n.Text,
		NewText:    n.Text + annotation,
		Evaluation: ev,
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(p.OldText),
		B:        difflib.SplitLines(p.NewText),
		FromFile: n.Title,
		ToFile:   n.Title + " (closed)",
		Context:  3,
	})
	if err != nil {
		// The diff only feeds the preview; fall back to the bare annotation
		diff = "+" + annotation
	}
	p.Diff = diff

	return p, ev, true
}
