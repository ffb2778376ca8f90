package commands

import (
	"github.com/spf13/cobra"

	"github.com/commons-tools/fpc-bot/internal/review"
)

func infoCmd() *cobra.Command {
	var flags reviewFlags
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print the vote count of every current nomination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return appCtx.withReviewer(cmd.Context(), cmd, &flags, false, func(r *review.Reviewer) error {
				run, err := r.Info(cmd.Context(), flags.list)
				if err != nil {
					return err
				}
				printRunSummary(cmd, run)
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
