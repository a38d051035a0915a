package main

import (
	"os"

	"github.com/aretw0/architect/internal/cli"
	"github.com/aretw0/architect/pkg/tokens"
	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Print the active design system",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ds, err := tokens.LoadOrDefault(cfg.DesignSystem)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return cli.PrintDesignSystem(ds, format, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().StringP("format", "f", "yaml", "Output format: yaml or json")
}
