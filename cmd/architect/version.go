package main

import (
	"fmt"

	"github.com/aretw0/architect"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of architect",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("architect version %s\n", architect.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
