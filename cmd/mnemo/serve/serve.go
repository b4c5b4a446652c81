package serve

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"mnemo/internal/app"
	"mnemo/internal/gateway"
	"mnemo/internal/trace"
)

var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := app.ConfigFrom(ctx)

		shutdown, err := trace.Init(ctx, cfg.Trace)
		if err != nil {
			return fmt.Errorf("initializing tracing: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				slog.Warn("tracing shutdown", "error", err)
			}
		}()

		a, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		chs := a.Channels()
		srv := gateway.NewServer(a.Runner, a.Log,
			gateway.WithCookieName(cfg.Gateway.CookieName),
			gateway.WithHistoryWindow(cfg.History.Window),
			gateway.WithChannels(chs...),
		)

		slog.Info("starting gateway", "addr", cfg.Gateway.Addr, "channels", len(chs), "providers", a.Generator.Len())
		return srv.ListenAndServe(ctx, cfg.Gateway.Addr)
	},
}

func init() {
	Cmd.Flags().StringP("addr", "a", "", "override gateway listen address")
}
