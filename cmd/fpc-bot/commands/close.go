package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/commons-tools/fpc-bot/internal/review"
)

func closeCmd() *cobra.Command {
	var flags reviewFlags
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Propose result annotations for finished nominations",
		Long: `For every nomination that is old enough and not withdrawn, contested or
multi-image, show the result annotation as a diff and ask before appending it.
Without bot credentials, or with --offline, accepted changes are not saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return appCtx.withReviewer(cmd.Context(), cmd, &flags, true, func(r *review.Reviewer) error {
				run, err := r.Close(cmd.Context(), flags.list)
				if err != nil {
					return err
				}
				printRunSummary(cmd, run)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Closed:    %d\n", run.Count(review.ActionClosed))
				fmt.Fprintf(out, "Dry run:   %d\n", run.Count(review.ActionDryRun))
				fmt.Fprintf(out, "Declined:  %d\n", run.Count(review.ActionDeclined))
				return nil
			})
		},
	}
	flags.register(cmd, "")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if flags.list == "" {
			flags.list = appCtx.cfg.CandidateList
		}
	}
	return cmd
}
