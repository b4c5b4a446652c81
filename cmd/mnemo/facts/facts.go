package facts

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"mnemo/internal/app"
	"mnemo/internal/memory"
)

var userID string

var Cmd = &cobra.Command{
	Use:   "facts",
	Short: "Inspect or delete a user's remembered facts",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's facts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := memory.Open(ctx, app.ConfigFrom(ctx).Memory)
		if err != nil {
			return err
		}
		defer store.Close()

		facts, err := store.List(ctx, userID)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(facts))
		for k := range facts {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		out := cmd.OutOrStdout()
		for _, k := range keys {
			fmt.Fprintf(out, "%s = %s\n", k, facts[k])
		}
		return nil
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Delete every fact of a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := memory.Open(ctx, app.ConfigFrom(ctx).Memory)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Forget(ctx, userID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "forgot facts of %s\n", userID)
		return nil
	},
}

func init() {
	Cmd.PersistentFlags().StringVarP(&userID, "user", "u", "cli", "user id")
	Cmd.AddCommand(listCmd, forgetCmd)
}
