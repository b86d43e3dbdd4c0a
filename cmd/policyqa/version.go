package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/policyqa/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("policyqa version %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
