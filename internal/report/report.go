// Package report formats console output for the review commands.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/commons-tools/fpc-bot/internal/fpc"
)

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// InfoLine renders the vote summary of one nomination
func InfoLine(ev fpc.Evaluation, prefix string) string {
	return fmt.Sprintf("%s: S:%02d(-%02d) O:%02d(-%02d) N:%02d D:%02d Se:%d Im:%02d W:%d (%s)",
		fpc.ShortTitle(ev.Title, prefix),
		ev.Votes.Support, ev.Struck.Support,
		ev.Votes.Oppose, ev.Struck.Oppose,
		ev.Votes.Neutral,
		ev.AgeDays, ev.Sections, ev.Images, flag(ev.Withdrawn),
		ev.Status)
}

// CheckLine renders a reconciliation outcome
func CheckLine(o fpc.Outcome, prefix string) string {
	title := fpc.ShortTitle(o.Title, prefix)
	if o.Verdict == fpc.VerdictSkipped {
		return fmt.Sprintf("%s: (ignoring, %s)", title, o.Reason)
	}
	return fmt.Sprintf("%s: S%02d/%02d O:%02d/%02d N%02d/%02d F%d/%d (%s)", title,
		o.New.Support, o.Old.Support,
		o.New.Oppose, o.Old.Oppose,
		o.New.Neutral, o.Old.Neutral,
		flag(o.Featured), flag(o.WasFeatured),
		o.Verdict)
}

// SkipLine explains why a nomination is left open
func SkipLine(title, reason string) string {
	return fmt.Sprintf("\"%s\" %s", title, reason)
}

// MissingLine reports a listed nomination whose page does not exist
func MissingLine(title string) string {
	return fmt.Sprintf("No such page '%s'", title)
}

// WriteProposal prints the page title and the diff of a closing edit
func WriteProposal(w io.Writer, p *fpc.Proposal) {
	fmt.Fprintf(w, "\n\n>>> %s <<<\n", p.Title)
	fmt.Fprint(w, p.Diff)
	if !strings.HasSuffix(p.Diff, "\n") {
		fmt.Fprintln(w)
	}
}

// Created describes when a nomination was opened, relative to now
func Created(created time.Time, known bool, now time.Time) string {
	if !known {
		return "unknown"
	}
	return humanize.RelTime(created, now, "ago", "from now")
}

// Stats is a storage and index summary
type Stats struct {
	Pages       int
	Evaluations int
	Indexed     uint64
	DBBytes     int64
	LastRun     time.Time
}

// WriteStats prints a storage and index summary
func WriteStats(w io.Writer, s Stats, now time.Time) {
	fmt.Fprintf(w, "Pages in database:       %s\n", humanize.Comma(int64(s.Pages)))
	fmt.Fprintf(w, "Evaluations recorded:    %s\n", humanize.Comma(int64(s.Evaluations)))
	fmt.Fprintf(w, "Nominations in index:    %s\n", humanize.Comma(int64(s.Indexed)))
	fmt.Fprintf(w, "Database size:           %s\n", humanize.Bytes(uint64(s.DBBytes)))
	if !s.LastRun.IsZero() {
		fmt.Fprintf(w, "Last evaluation:         %s\n", humanize.RelTime(s.LastRun, now, "ago", "from now"))
	}
}
