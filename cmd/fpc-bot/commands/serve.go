package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/commons-tools/fpc-bot/internal/web"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the read-only web dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				appCtx.cfg.Addr = addr
			}

			db, idx, err := appCtx.openStore()
			if err != nil {
				return err
			}
			defer db.Close()
			defer idx.Close()

			server, err := web.NewServer(db, idx, appCtx.cfg.CandidatePrefix, appCtx.logger)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}

			srv := &http.Server{
				Addr:              appCtx.cfg.Addr,
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			fmt.Fprintln(out, "=== FPC Dashboard ===")
			fmt.Fprintf(out, "Server running at: http://%s\n", appCtx.cfg.Addr)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Press Ctrl+C to stop")

			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	return cmd
}
