package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/commons-tools/fpc-bot/internal/config"
)

var (
	configPath string
	envFile    string
	verbose    bool

	appCtx *app
)

func Execute() error {
	root := &cobra.Command{
		Use:           "fpc-bot",
		Short:         "Vote counting for Commons featured picture candidates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			cfg, err := config.Load(configPath, envFile)
			if err != nil {
				return err
			}
			if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			appCtx = &app{cfg: cfg, logger: logger}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "env file with FPC_* variables")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		infoCmd(), closeCmd(), checkCmd(),
		syncCmd(), searchCmd(), reindexCmd(), statsCmd(), serveCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := root.ExecuteContext(ctx)
	if err != nil {
		slog.Error("command failed", "error", err)
	}
	return err
}
