package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var buildForce bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the index and save it",
	Long: `Build ingests the documents directory, chunks and embeds it, and saves
the index. Without --force a saved index that is still valid is kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context(), buildForce || rebuild)
		if err != nil {
			return err
		}
		defer a.Close()
		return printStats(cmd, a)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print corpus and backend statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context(), rebuild)
		if err != nil {
			return err
		}
		defer a.Close()
		return printStats(cmd, a)
	},
}

func init() {
	buildCmd.Flags().BoolVar(&buildForce, "force", false, "rebuild even if a saved index exists")
	rootCmd.AddCommand(buildCmd, statsCmd)
}

func printStats(cmd *cobra.Command, a *app) error {
	data, err := json.MarshalIndent(a.pipeline.Stats(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
