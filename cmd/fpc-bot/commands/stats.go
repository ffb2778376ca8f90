package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/commons-tools/fpc-bot/internal/report"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database and index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, idx, err := appCtx.openStore()
			if err != nil {
				return err
			}
			defer db.Close()
			defer idx.Close()

			var s report.Stats
			if s.Pages, err = db.CountPages(); err != nil {
				return fmt.Errorf("count pages: %w", err)
			}
			if s.Evaluations, err = db.CountEvaluations(); err != nil {
				return fmt.Errorf("count evaluations: %w", err)
			}
			if s.Indexed, err = idx.Count(); err != nil {
				return fmt.Errorf("count index: %w", err)
			}
			if info, err := os.Stat(appCtx.cfg.DBPath()); err == nil {
				s.DBBytes = info.Size()
			}

			latest, err := db.LatestEvaluations()
			if err != nil {
				return fmt.Errorf("list evaluations: %w", err)
			}
			for _, e := range latest {
				if e.EvaluatedAt.After(s.LastRun) {
					s.LastRun = e.EvaluatedAt
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "=== Statistics ===")
			report.WriteStats(out, s, time.Now())
			return nil
		},
	}
}
