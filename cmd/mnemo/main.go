package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mnemo/cmd/mnemo/chat"
	"mnemo/cmd/mnemo/facts"
	"mnemo/cmd/mnemo/history"
	"mnemo/cmd/mnemo/serve"
	"mnemo/internal/app"
	"mnemo/internal/config"
	"mnemo/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mnemo",
		Short:         "mnemo is a chat assistant that remembers what you tell it",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			v := config.NewViper()
			config.BindFlags(v, cmd, map[string]string{
				"addr":           config.KeyGatewayAddr,
				"memory-backend": config.KeyMemoryBackend,
				"memory-path":    config.KeyMemoryPath,
				"history-path":   config.KeyHistoryPath,
				"debug":          config.KeyLogDebug,
				"pretty":         config.KeyLogPretty,
			})
			config.Overlay(cfg, v)

			logger.Init(logger.WithDebug(cfg.Log.Debug), logger.WithPretty(cfg.Log.Pretty))
			cmd.SetContext(app.WithConfig(cmd.Context(), cfg))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default ~/.config/mnemo/config.toml)")
	flags.String("memory-backend", "", "fact store backend: file, sqlite or redis")
	flags.String("memory-path", "", "fact file for the file backend")
	flags.String("history-path", "", "conversation log file")
	flags.Bool("debug", false, "enable debug logging")
	flags.Bool("pretty", false, "human-readable log output")

	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(chat.Cmd)
	rootCmd.AddCommand(history.Cmd, history.ExportCmd, history.ClearCmd)
	rootCmd.AddCommand(facts.Cmd)

	return rootCmd
}
