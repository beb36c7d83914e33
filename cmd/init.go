package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joelfokou/buildshim/internal/config"
	"github.com/joelfokou/buildshim/internal/history"
	"github.com/joelfokou/buildshim/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// initCmd writes the default config file and creates the history database.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialise config file and history database",
	Long:  "Create the user config file, if missing, and initialise the SQLite database for report history",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := config.C.Paths.Database
		store, err := history.NewStore(dbPath)
		if err != nil {
			logger.L().Error("failed to initialise database", zap.String("path", dbPath), zap.Error(err))
			return fmt.Errorf("failed to initialise database: %w", err)
		}
		store.Close()

		cfgFile := configFile
		if cfgFile == "" {
			cfgFile = config.ConfigFile()
		}
		cfgDir := filepath.Dir(cfgFile)

		if err := os.MkdirAll(cfgDir, 0755); err != nil {
			logger.L().Error("failed to create configuration directory", zap.String("path", cfgDir), zap.Error(err))
			return fmt.Errorf("failed to create configuration directory: %w", err)
		}

		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			if err := os.WriteFile(cfgFile, []byte(config.DefaultConfig()), 0644); err != nil {
				logger.L().Error("failed to write config file", zap.String("path", cfgFile), zap.Error(err))
				return fmt.Errorf("failed to write config file: %w", err)
			}
			logger.L().Info("config file created", zap.String("path", cfgFile))
		} else {
			logger.L().Info("config file already exists, skipping creation", zap.String("path", cfgFile))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "\n✓ buildshim initialised")
		fmt.Fprintf(out, "  Config file: %s\n", cfgFile)
		fmt.Fprintf(out, "  Database:    %s\n", dbPath)
		fmt.Fprintln(out, "\nConfigure paths via BSHIM_* environment variables or the config file.")

		logger.L().Info("initialised",
			zap.String("config_file", cfgFile),
			zap.String("database", dbPath),
		)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
