package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/commons-tools/fpc-bot/internal/config"
	"github.com/commons-tools/fpc-bot/internal/fpc"
	"github.com/commons-tools/fpc-bot/internal/report"
	"github.com/commons-tools/fpc-bot/internal/review"
	"github.com/commons-tools/fpc-bot/internal/search"
	"github.com/commons-tools/fpc-bot/internal/storage"
	"github.com/commons-tools/fpc-bot/internal/wiki"
)

// app holds what every subcommand needs
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func (a *app) wikiClient() *wiki.Client {
	return wiki.NewClient(wiki.Options{
		APIURL:          a.cfg.APIURL,
		UserAgent:       a.cfg.UserAgent,
		CandidatePrefix: a.cfg.CandidatePrefix,
		Timeout:         a.cfg.Timeout,
	})
}

// openStore opens the database and the search index under the data dir
func (a *app) openStore() (*storage.DB, *search.Index, error) {
	if err := os.MkdirAll(a.cfg.DataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := storage.Open(a.cfg.DBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	idx, err := search.Open(a.cfg.IndexPath(), a.cfg.CandidatePrefix)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("open search index: %w", err)
	}
	return db, idx, nil
}

// reviewFlags are shared by info, close and check
type reviewFlags struct {
	offline bool
	list    string
}

func (f *reviewFlags) register(cmd *cobra.Command, defaultList string) {
	cmd.Flags().BoolVar(&f.offline, "offline", false, "read pages from the local snapshot written by sync")
	cmd.Flags().StringVar(&f.list, "list", defaultList, "page listing the nominations")
}

// withReviewer builds a Reviewer and runs fn with it. Writes are enabled only
// for online runs with credentials.
func (a *app) withReviewer(ctx context.Context, cmd *cobra.Command, f *reviewFlags, write bool,
	fn func(r *review.Reviewer) error) error {
	db, idx, err := a.openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	defer idx.Close()

	matcher, err := fpc.NewMatcher(fpc.DefaultCatalogue())
	if err != nil {
		return fmt.Errorf("compile catalogue: %w", err)
	}

	opts := review.Options{
		Confirmer: report.NewPrompt(cmd.InOrStdin(), cmd.OutOrStdout()),
		Recorder:  db,
		Indexer:   idx,
		Matcher:   matcher,
		Evaluator: fpc.NewEvaluator(a.cfg.FPCPolicy()),
		Prefix:    a.cfg.CandidatePrefix,
		Out:       cmd.OutOrStdout(),
		Logger:    a.logger,
	}

	if f.offline {
		opts.Source = db
	} else {
		client := a.wikiClient()
		opts.Source = client
		if write && a.cfg.CanWrite() {
			if err := client.Login(ctx, a.cfg.BotUser, a.cfg.BotPassword); err != nil {
				return err
			}
			opts.Writer = client
		}
	}
	if write && opts.Writer == nil {
		a.logger.Warn("no bot credentials or offline, accepted changes will not be saved")
	}

	return fn(review.New(opts))
}

func printRunSummary(cmd *cobra.Command, run *review.Run) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Run:       %s\n", run.ID)
	fmt.Fprintf(out, "Listed:    %d\n", len(run.Results))
	fmt.Fprintf(out, "Missing:   %d\n", run.Count(review.ActionMissing))
	fmt.Fprintf(out, "Errors:    %d\n", run.Count(review.ActionFailed))
}
