package main

import (
	"os"

	"github.com/aretw0/architect/internal/cli"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Refine a component interactively",
	Long: `Starts a conversation where each line refines the component produced so far.
Type ':history' to show the turns, ':reset' to start over and 'exit' to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, _, err := buildStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		sessionID, _ := cmd.Flags().GetString("session")
		headless, _ := cmd.Flags().GetBool("headless")
		plain, _ := cmd.Flags().GetBool("plain")

		return cli.RunChat(ctx, stack.Engine, cli.ChatOptions{
			SessionID: sessionID,
			Headless:  headless,
			Plain:     plain,
		}, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("session", "s", "", "Session ID to resume (a new one is created when empty)")
	chatCmd.Flags().Bool("headless", false, "Print only results (for scripting)")
	chatCmd.Flags().Bool("plain", false, "Print code without terminal rendering")
	chatCmd.Flags().Bool("mock", false, "Use the offline demo model")
}
