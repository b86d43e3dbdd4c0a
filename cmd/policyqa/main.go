// Command policyqa answers questions about insurance policy documents with
// clause-level citations, from the terminal or over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/policyqa/internal/config"
	logpkg "github.com/kailas-cloud/policyqa/internal/logger"
)

var (
	envFile    string
	configPath string
	rebuild    bool
)

var rootCmd = &cobra.Command{
	Use:   "policyqa",
	Short: "Policy Q&A with grounded citations",
	Long: `policyqa indexes insurance policy documents and answers questions
about them, citing the document, clause and page each answer comes from.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: config/$ENV.yaml)")
	rootCmd.PersistentFlags().BoolVar(&rebuild, "rebuild", false, "rebuild the index even if a saved one exists")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the dotenv file, the YAML config and builds the logger.
func loadConfig() (config.Config, *zap.Logger, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return config.Config{}, nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	env := config.GetEnv()
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}
