package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/commons-tools/fpc-bot/internal/fpc"
	"github.com/commons-tools/fpc-bot/internal/review"
)

func checkCmd() *cobra.Command {
	var flags reviewFlags
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Recount a closed log and compare with the recorded results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return appCtx.withReviewer(cmd.Context(), cmd, &flags, false, func(r *review.Reviewer) error {
				run, err := r.Check(cmd.Context(), flags.list)
				if err != nil {
					return err
				}
				printRunSummary(cmd, run)
				verdicts := run.Verdicts()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "OK:        %d\n", verdicts[fpc.VerdictOK])
				fmt.Fprintf(out, "FAIL:      %d\n", verdicts[fpc.VerdictFail])
				fmt.Fprintf(out, "Skipped:   %d\n", verdicts[fpc.VerdictSkipped])
				return nil
			})
		},
	}
	flags.register(cmd, "")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if flags.list == "" {
			flags.list = appCtx.cfg.TestLog
		}
	}
	return cmd
}
