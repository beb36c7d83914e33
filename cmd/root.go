// Package cmd implements the command-line interface for the application.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/joelfokou/buildshim/internal/config"
	"github.com/joelfokou/buildshim/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose    bool
	logLevel   string
	configFile string
)

// exitError carries a process exit code without printing an error message.
// Commands return it when the output already explains the failure.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

var rootCmd = &cobra.Command{
	Use:   "bshim",
	Short: "bshim - build and test shims",
	Long: heredoc.Doc(`
		bshim bundles the small helpers the build runs around compilation
		and testing.

		It generates the third-party path table for the clang plugin, runs
		go test and rewrites its results into the TEST-PASS / TEST-UNEXPECTED-FAIL
		log format the build infrastructure scans for, and keeps a history of
		processed reports.
	`),
	Version:       "0.1.0", // Set this from build flags
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Sync()
		var e *exitError
		if errors.As(err, &e) {
			os.Exit(e.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initConfig loads configuration and initialises the logger.
func initConfig() {
	if err := config.Load(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// An explicit --log-level wins over the config file.
	if config.C.LogLevel != "" && !rootCmd.PersistentFlags().Changed("log-level") {
		logLevel = config.C.LogLevel
	}

	if verbose {
		logLevel = "debug"
	}

	loggerConfig := logger.Config{
		Level:      logLevel,
		Format:     "console",
		OutputFile: config.C.Paths.LogsFile,
	}

	if err := logger.Init(loggerConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialise logger: %v\n", err)
		os.Exit(1)
	}

	logger.L().Debug("configuration loaded", zap.String("config_path", configFile))
	logger.L().Debug("logger initialised", zap.String("level", logLevel))
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (overrides defaults)")
}
