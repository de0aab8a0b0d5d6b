// Package main provides the tagform CLI: conditional widget evaluation,
// framework linting, rule editing and filter query building.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dlovans/tagform/internal/config"
	"github.com/dlovans/tagform/internal/logging"
)

var (
	// Global flags
	configPath string
	logLevel   string
	jsonLogs   bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tagform",
	Short: "Conditional widgets and entry filters for analytical frameworks",
	Long: `tagform evaluates the conditional visibility rules of a framework's
widgets, lints frameworks, edits rules and turns entry filters into query
variables.

Framework files may be JSON or YAML (.yaml, .yml). Without --file, input
is read from stdin as JSON.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}
		if cmd.Flags().Changed("json-logs") {
			cfg.Logging.JSON = jsonLogs
		}
		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.JSON)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", true, "Log as JSON")

	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(editorCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
