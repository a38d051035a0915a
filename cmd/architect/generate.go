package main

import (
	"errors"
	"os"
	"strings"

	"github.com/aretw0/architect/internal/cli"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Generate a component from a description",
	Long: `Runs the generate → lint → repair loop once and prints the resulting component.
The prompt can be given as arguments or with --prompt.`,
	Example: `  architect generate "a login card with email and password"
  architect generate --prior output/generated-component.ts "make the button full width"
  architect generate --mock --trace "a pricing table"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, _ := cmd.Flags().GetString("prompt")
		if prompt == "" {
			prompt = strings.Join(args, " ")
		}
		if strings.TrimSpace(prompt) == "" {
			return errors.New("a prompt is required (pass it as arguments or with --prompt)")
		}

		stack, _, err := buildStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		prior, _ := cmd.Flags().GetString("prior")
		out, _ := cmd.Flags().GetString("out")
		asJSON, _ := cmd.Flags().GetBool("json")
		plain, _ := cmd.Flags().GetBool("plain")
		trace, _ := cmd.Flags().GetBool("trace")

		_, err = cli.RunGenerate(ctx, stack.Engine, cli.GenerateOptions{
			Prompt:    prompt,
			PriorPath: prior,
			OutPath:   out,
			JSON:      asJSON,
			Render:    !plain && !asJSON,
			Trace:     trace,
		}, os.Stdout)
		return err
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("prompt", "p", "", "Component description")
	generateCmd.Flags().String("prior", "", "File with existing component code to refine")
	generateCmd.Flags().StringP("out", "o", cli.DefaultOutPath, "Write the generated code to this file (empty to skip)")
	generateCmd.Flags().Bool("json", false, "Print the full result as JSON")
	generateCmd.Flags().Bool("plain", false, "Print code without terminal rendering")
	generateCmd.Flags().Bool("trace", false, "Print a Mermaid diagram of the attempts")
	generateCmd.Flags().Bool("mock", false, "Use the offline demo model")
}
