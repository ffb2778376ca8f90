package review

import "github.com/commons-tools/fpc-bot/internal/fpc"

// Action is what happened to one candidate during a run
type Action int

const (
	ActionReported Action = iota // printed, nothing else to do
	ActionSkipped                // left alone, with a reason
	ActionMissing                // page does not exist
	ActionFailed                 // could not be read or written
	ActionClosed
	ActionDryRun   // accepted, but no writer is configured
	ActionDeclined // operator said no
	ActionQuit     // operator stopped the run
)

func (a Action) String() string {
	switch a {
	case ActionReported:
		return "reported"
	case ActionSkipped:
		return "skipped"
	case ActionMissing:
		return "missing"
	case ActionFailed:
		return "failed"
	case ActionClosed:
		return "closed"
	case ActionDryRun:
		return "dry run"
	case ActionDeclined:
		return "declined"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Result is the per-candidate outcome of a run
type Result struct {
	Title      string
	Action     Action
	Evaluation *fpc.Evaluation
	Outcome    *fpc.Outcome  // check runs only
	Proposal   *fpc.Proposal // close runs only
	Err        error
}

// Run collects the results of one pass over a candidate list
type Run struct {
	ID      string
	List    string
	Results []Result
	Stopped bool // the operator quit before the end of the list

	evals []fpc.Evaluation
	texts map[string]string
}

func (r *Run) add(res Result) {
	r.Results = append(r.Results, res)
}

func (r *Run) evaluated(n *fpc.Nomination, ev fpc.Evaluation) {
	r.evals = append(r.evals, ev)
	r.texts[n.Title] = n.Text
}

// Count returns how many candidates ended with action a
func (r *Run) Count(a Action) int {
	var n int
	for _, res := range r.Results {
		if res.Action == a {
			n++
		}
	}
	return n
}

// Verdicts tallies the reconciliation verdicts of a check run
func (r *Run) Verdicts() map[fpc.Verdict]int {
	out := make(map[fpc.Verdict]int)
	for _, res := range r.Results {
		if res.Outcome != nil {
			out[res.Outcome.Verdict]++
		}
	}
	return out
}
