package chat

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mnemo/internal/app"
)

var userID string

var Cmd = &cobra.Command{
	Use:   "chat [message...]",
	Short: "Chat from the terminal",
	Long:  "Sends one message when given as arguments, otherwise reads messages line by line from stdin.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := app.New(ctx, app.ConfigFrom(ctx))
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if len(args) > 0 {
			reply, err := a.Runner.Run(ctx, userID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, reply.Text)
			return nil
		}

		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for {
			fmt.Fprint(out, "> ")
			if !scanner.Scan() {
				fmt.Fprintln(out)
				return scanner.Err()
			}
			reply, err := a.Runner.Run(ctx, userID, scanner.Text())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, reply.Text)
		}
	},
}

func init() {
	Cmd.Flags().StringVarP(&userID, "user", "u", "cli", "user id to chat as")
}
