package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func reindexCmd() *cobra.Command {
	var clean bool
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the latest stored evaluations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			startTime := time.Now()
			out := cmd.OutOrStdout()

			if clean {
				fmt.Fprintln(out, "Removing old index...")
				if err := os.RemoveAll(appCtx.cfg.IndexPath()); err != nil {
					return fmt.Errorf("remove index: %w", err)
				}
			}

			db, idx, err := appCtx.openStore()
			if err != nil {
				return err
			}
			defer db.Close()
			defer idx.Close()

			fmt.Fprintln(out, "Rebuilding index...")
			n, pruned, err := idx.IndexFromStorage(db)
			if err != nil {
				return fmt.Errorf("rebuild index: %w", err)
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "=== Reindex Complete ===")
			fmt.Fprintf(out, "Nominations indexed: %d\n", n)
			fmt.Fprintf(out, "Stale entries:       %d\n", pruned)
			fmt.Fprintf(out, "Duration:            %v\n", time.Since(startTime).Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().BoolVar(&clean, "clean", false, "delete the index before rebuilding it")
	return cmd
}
