package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func searchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Query evaluated nominations",
		Example: `  fpc-bot search sunset
  fpc-bot search 'status:"Not featured"'
  fpc-bot search 'closeable:true support:>=5'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, idx, err := appCtx.openStore()
			if err != nil {
				return err
			}
			defer db.Close()
			defer idx.Close()

			results, err := idx.Search(strings.Join(args, " "), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No results found")
				return nil
			}

			fmt.Fprintf(out, "\nFound %d results:\n\n", len(results))
			for i, result := range results {
				fmt.Fprintf(out, "%d. %s\n", i+1, result.Name)
				fmt.Fprintf(out, "   Status: %s\n", result.Status)
				if result.Reason != "" {
					fmt.Fprintf(out, "   Reason: %s\n", result.Reason)
				}
				fmt.Fprintf(out, "   Page:   %s\n", result.Title)
				fmt.Fprintf(out, "   Score:  %.3f\n", result.Score)
				if snippets, ok := result.Fragments["content"]; ok && len(snippets) > 0 {
					fmt.Fprintf(out, "   Preview: %s\n", snippets[0])
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of results")
	return cmd
}
