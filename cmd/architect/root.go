package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/architect/internal/cli"
	"github.com/aretw0/architect/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "architect",
	Short: "Architect generates design-system compliant Angular components",
	Long: `Architect turns a natural-language request into a standalone Angular component,
lints it against your design tokens and asks the model to repair it until it passes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default: architect.yaml|yml|json|toml in the working directory)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging and lifecycle tracing")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().String("design-system", "", "Design tokens file (JSON, YAML or TOML)")
}

// loadConfig reads the config and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Log.Format = v
	}
	if v, _ := cmd.Flags().GetString("design-system"); v != "" {
		cfg.DesignSystem = v
	}
	debug, _ := cmd.Flags().GetBool("debug")

	logger := cli.CreateLogger(cfg.Log.Level, cfg.Log.Format, debug)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// buildStack loads the config and wires the engine. Callers must Close the stack.
func buildStack(cmd *cobra.Command) (*cli.Stack, *config.Config, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	mock, _ := cmd.Flags().GetBool("mock")

	stack, err := cli.Build(cmd.Context(), cfg, logger, cli.BuildOptions{Mock: mock, Debug: debug})
	if err != nil {
		return nil, nil, err
	}
	return stack, cfg, nil
}
