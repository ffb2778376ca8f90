package fpc

// Verdict is the outcome of comparing a fresh count against a prior result
type Verdict int

const (
	VerdictSkipped Verdict = iota
	VerdictOK
	VerdictFail
)

func (v Verdict) String() string {
	switch v {
	case VerdictOK:
		return "OK"
	case VerdictFail:
		return "FAIL"
	default:
		return "skipped"
	}
}

// Reasons a reconciliation is skipped
const (
	SkipWithdrawn      = "was withdrawn"
	SkipContested      = "was FPXed"
	SkipNoResult       = "has no results"
	SkipSeveralResults = "has several results"
)

// Outcome reports a reconciliation. Old and WasFeatured are only set when
// exactly one prior result was found.
type Outcome struct {
	Title   string
	Verdict Verdict
	Reason  string

	Old         Tally
	WasFeatured bool
	New         Tally
	Featured    bool
}

// Reconcile recounts a closed nomination and compares the count with the result
// recorded on the page. It is used to test the counting rules against old logs.
func (e *Evaluator) Reconcile(n *Nomination) Outcome {
	out := Outcome{Title: n.Title, Verdict: VerdictSkipped}
	results := n.PriorResults()

	switch {
	case n.IsWithdrawn():
		out.Reason = SkipWithdrawn
		return out
	case n.IsContested():
		out.Reason = SkipContested
		return out
	case len(results) == 0:
		out.Reason = SkipNoResult
		return out
	case len(results) > 1:
		out.Reason = SkipSeveralResults
		return out
	}

	old := results[0]
	out.Old = old.Votes
	out.WasFeatured = old.Featured
	out.New = n.CountVotes()
	out.Featured = e.IsFeatured(n)

	if out.New == out.Old && out.Featured == out.WasFeatured {
		out.Verdict = VerdictOK
	} else {
		out.Verdict = VerdictFail
	}
	return out
}
