package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/commons-tools/fpc-bot/internal/fpc"
	"github.com/commons-tools/fpc-bot/internal/report"
	"github.com/commons-tools/fpc-bot/internal/storage"
)

// DefaultSummary is the edit summary used when closing
const DefaultSummary = "Counting votes: result ready for review"

// ConfirmQuestion is asked before every closing edit
const ConfirmQuestion = "Do you want to accept these changes?"

// PageSource provides nomination pages: the live wiki or a synced snapshot
type PageSource interface {
	Candidates(ctx context.Context, listPage string) ([]string, error)
	PageText(ctx context.Context, title string) (string, error)
	CreatedAt(ctx context.Context, title string) (time.Time, bool, error)
}

// PageWriter appends text to a page
type PageWriter interface {
	AppendText(ctx context.Context, title, text, summary string) error
}

// Confirmer asks the operator before an edit
type Confirmer interface {
	Ask(question string) (report.Choice, error)
}

// Recorder stores the evaluations of a run
type Recorder interface {
	SaveEvaluations(evals []*storage.Evaluation) error
}

// Indexer makes the evaluations of a run searchable
type Indexer interface {
	IndexEvaluations(evals []*storage.Evaluation, texts map[string]string) error
}

// Options configures a Reviewer. Source, Matcher and Evaluator are required.
type Options struct {
	Source    PageSource
	Writer    PageWriter // nil makes closing a dry run
	Confirmer Confirmer
	Recorder  Recorder
	Indexer   Indexer
	Matcher   *fpc.Matcher
	Evaluator *fpc.Evaluator
	Prefix    string // candidate prefix, stripped in console lines
	Summary   string
	Out       io.Writer
	Logger    *slog.Logger
	NewID     func() string
}

// Reviewer runs the info, close and check passes over a candidate list
type Reviewer struct {
	opts Options
}

// New creates a Reviewer
func New(opts Options) *Reviewer {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Summary == "" {
		opts.Summary = DefaultSummary
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Reviewer{opts: opts}
}

// load reads one nomination. A missing history degrades to an unknown
// creation time, which keeps the nomination open.
func (r *Reviewer) load(ctx context.Context, title string) (*fpc.Nomination, error) {
	text, err := r.opts.Source.PageText(ctx, title)
	if err != nil {
		return nil, err
	}

	n := fpc.NewNomination(r.opts.Matcher, title, text)

	created, ok, err := r.opts.Source.CreatedAt(ctx, title)
	switch {
	case err != nil:
		r.opts.Logger.Warn("could not retrieve history, using now", "title", title, "error", err)
	case !ok:
		r.opts.Logger.Warn("could not retrieve history, using now", "title", title)
	default:
		n.WithCreated(created)
	}
	return n, nil
}

func (r *Reviewer) println(s string) {
	fmt.Fprintln(r.opts.Out, s)
}

// start lists the candidates of listPage and opens a run
func (r *Reviewer) start(ctx context.Context, listPage string) (*Run, []string, error) {
	titles, err := r.opts.Source.Candidates(ctx, listPage)
	if err != nil {
		return nil, nil, fmt.Errorf("find candidates: %w", err)
	}

	run := &Run{ID: r.opts.NewID(), List: listPage, texts: make(map[string]string)}
	r.opts.Logger.Info("reviewing candidates", "list", listPage, "count", len(titles), "run_id", run.ID)
	return run, titles, nil
}

// failed records a page that could not be read
func (r *Reviewer) failed(run *Run, title string, err error) {
	if errors.Is(err, fpc.ErrPageMissing) {
		r.println(report.MissingLine(title))
		run.add(Result{Title: title, Action: ActionMissing, Err: err})
		return
	}
	r.opts.Logger.Error("read nomination failed", "title", title, "error", err)
	run.add(Result{Title: title, Action: ActionFailed, Err: err})
}

// Info prints the vote summary of every candidate on listPage
func (r *Reviewer) Info(ctx context.Context, listPage string) (*Run, error) {
	run, titles, err := r.start(ctx, listPage)
	if err != nil {
		return nil, err
	}

	for _, title := range titles {
		if err := ctx.Err(); err != nil {
			return run, err
		}

		n, err := r.load(ctx, title)
		if err != nil {
			r.failed(run, title, err)
			continue
		}

		ev := r.opts.Evaluator.Evaluate(n)
		r.println(report.InfoLine(ev, r.opts.Prefix))
		run.evaluated(n, ev)
		run.add(Result{Title: title, Action: ActionReported, Evaluation: &ev})
	}

	return run, r.record(run)
}

// Close proposes the result annotation for every closeable candidate and
// appends it after confirmation. Quitting stops the run.
func (r *Reviewer) Close(ctx context.Context, listPage string) (*Run, error) {
	if r.opts.Confirmer == nil {
		return nil, errors.New("close: no confirmer")
	}

	run, titles, err := r.start(ctx, listPage)
	if err != nil {
		return nil, err
	}

	for _, title := range titles {
		if err := ctx.Err(); err != nil {
			return run, err
		}

		n, err := r.load(ctx, title)
		if err != nil {
			r.failed(run, title, err)
			continue
		}

		proposal, ev, ok := r.opts.Evaluator.ProposeClose(n)
		run.evaluated(n, ev)
		if !ok {
			r.println(report.SkipLine(title, ev.Reason))
			r.opts.Logger.Debug("not closing", "title", title, "reason", ev.Reason)
			run.add(Result{Title: title, Action: ActionSkipped, Evaluation: &ev})
			continue
		}

		res := r.confirmAndWrite(ctx, proposal)
		run.add(res)
		if res.Action == ActionQuit {
			r.println("Aborting.")
			run.Stopped = true
			break
		}
	}

	return run, r.record(run)
}

func (r *Reviewer) confirmAndWrite(ctx context.Context, p *fpc.Proposal) Result {
	res := Result{Title: p.Title, Evaluation: &p.Evaluation, Proposal: p}

	report.WriteProposal(r.opts.Out, p)
	choice, err := r.opts.Confirmer.Ask(ConfirmQuestion)
	if err != nil {
		r.opts.Logger.Error("confirmation failed", "title", p.Title, "error", err)
		res.Action, res.Err = ActionQuit, err
		return res
	}

	switch choice {
	case report.ChoiceQuit:
		res.Action = ActionQuit
	case report.ChoiceYes:
		if r.opts.Writer == nil {
			r.println("Dry run, not saving.")
			res.Action = ActionDryRun
			return res
		}
		if err := r.opts.Writer.AppendText(ctx, p.Title, p.Annotation, r.opts.Summary); err != nil {
			r.opts.Logger.Error("closing edit failed", "title", p.Title, "error", err)
			res.Action, res.Err = ActionFailed, err
			return res
		}
		r.opts.Logger.Info("closed", "title", p.Title, "featured", p.Evaluation.Featured)
		res.Action = ActionClosed
	default:
		r.println("Changes ignored")
		res.Action = ActionDeclined
	}
	return res
}

// Check recounts every candidate on listPage and compares the count with the
// result recorded on the page. Redirects are skipped silently.
func (r *Reviewer) Check(ctx context.Context, listPage string) (*Run, error) {
	run, titles, err := r.start(ctx, listPage)
	if err != nil {
		return nil, err
	}

	for _, title := range titles {
		if err := ctx.Err(); err != nil {
			return run, err
		}

		n, err := r.load(ctx, title)
		if errors.Is(err, fpc.ErrRedirect) {
			r.opts.Logger.Debug("skipping redirect", "title", title)
			run.add(Result{Title: title, Action: ActionSkipped, Err: err})
			continue
		}
		if err != nil {
			r.failed(run, title, err)
			continue
		}

		outcome := r.opts.Evaluator.Reconcile(n)
		ev := r.opts.Evaluator.Evaluate(n)
		r.println(report.CheckLine(outcome, r.opts.Prefix))
		run.evaluated(n, ev)

		action := ActionReported
		if outcome.Verdict == fpc.VerdictSkipped {
			action = ActionSkipped
		}
		run.add(Result{Title: title, Action: action, Evaluation: &ev, Outcome: &outcome})
	}

	return run, r.record(run)
}

// record stores and indexes the evaluations of a finished run
func (r *Reviewer) record(run *Run) error {
	if len(run.evals) == 0 {
		return nil
	}

	now := r.opts.Evaluator.Now()
	records := make([]*storage.Evaluation, 0, len(run.evals))
	for _, ev := range run.evals {
		records = append(records, storage.NewEvaluation(r.opts.NewID(), run.ID, ev, now))
	}

	if r.opts.Recorder != nil {
		if err := r.opts.Recorder.SaveEvaluations(records); err != nil {
			return fmt.Errorf("save evaluations: %w", err)
		}
	}
	if r.opts.Indexer != nil {
		if err := r.opts.Indexer.IndexEvaluations(records, run.texts); err != nil {
			return fmt.Errorf("index evaluations: %w", err)
		}
	}

	r.opts.Logger.Info("recorded evaluations", "run_id", run.ID, "count", len(records))
	return nil
}
