package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/commons-tools/fpc-bot/internal/sync"
)

func syncCmd() *cobra.Command {
	var withTestLog bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror the candidate list into the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appCtx.cfg

			db, idx, err := appCtx.openStore()
			if err != nil {
				return err
			}
			defer db.Close()
			defer idx.Close()

			lists := []string{cfg.CandidateList}
			if withTestLog {
				lists = append(lists, cfg.TestLog)
			}

			worker := sync.NewWorker(appCtx.wikiClient(), db, cfg.Concurrency, appCtx.logger)
			stats, err := worker.Sync(cmd.Context(), lists...)
			if err != nil {
				return fmt.Errorf("sync: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			fmt.Fprintln(out, "=== Sync Complete ===")
			fmt.Fprintf(out, "Total pages:   %d\n", stats.TotalPages)
			fmt.Fprintf(out, "New:           %d\n", stats.NewPages)
			fmt.Fprintf(out, "Updated:       %d\n", stats.UpdatedPages)
			fmt.Fprintf(out, "Skipped:       %d\n", stats.SkippedPages)
			fmt.Fprintf(out, "Missing:       %d\n", stats.MissingPages)
			fmt.Fprintf(out, "Redirects:     %d\n", stats.Redirects)
			fmt.Fprintf(out, "Errors:        %d\n", stats.Errors)
			fmt.Fprintf(out, "Duration:      %v\n", stats.Duration)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withTestLog, "with-test-log", false, "also mirror the log page used by check")
	return cmd
}
