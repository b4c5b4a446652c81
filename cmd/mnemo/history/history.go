package history

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mnemo/internal/app"
	"mnemo/internal/config"
	mhistory "mnemo/internal/history"
)

var (
	userID string
	limit  int
)

func openLog(cfg *config.Config) *mhistory.Log {
	return mhistory.Open(cfg.History.Path)
}

var Cmd = &cobra.Command{
	Use:   "history",
	Short: "Print a user's recent conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := app.ConfigFrom(ctx)
		if !cmd.Flags().Changed("limit") {
			limit = cfg.History.Window
		}

		events, err := openLog(cfg).Window(ctx, userID, limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, ev := range events {
			fmt.Fprintf(out, "%s %-9s %s\n", ev.TS, ev.Role, ev.Message)
		}
		return nil
	},
}

var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a user's full conversation as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		events, err := openLog(app.ConfigFrom(ctx)).Export(ctx, userID)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"user_id": userID, "items": events})
	},
}

var ClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove a user's turns from the conversation log",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		removed, err := openLog(app.ConfigFrom(ctx)).Compact(ctx, userID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d events\n", removed)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{Cmd, ExportCmd, ClearCmd} {
		c.Flags().StringVarP(&userID, "user", "u", "cli", "user id")
	}
	Cmd.Flags().IntVarP(&limit, "limit", "n", 100, "number of events to show")
}
