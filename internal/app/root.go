package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
)

var (
	dbPath string

	// RootCmd is the root command for lumen
	RootCmd = &cobra.Command{
		Use:   "lumen",
		Short: "Desktop application launcher with usage-weighted fuzzy search",
		Long: `lumen indexes the desktop applications installed on this system and ranks
them against fuzzy queries, weighting results by how often you launch them.

The index is rebuilt from the XDG application directories on every scan.
Launch history lives in a local SQLite database and decays out after the
configured usage window, so rankings follow what you actually use now.

Quick Start:
  1. lumen scan
  2. lumen query fire
  3. lumen launch org.mozilla.firefox

Features:
  • Fuzzy matching over names, identifiers, and keywords
  • Usage-weighted ranking with a bounded popularity boost
  • Icon resolution across themed and flat icon directories
  • Automatic rescans via the watch daemon

Examples:
  # Rebuild the application index
  lumen scan

  # Rank applications against a query
  lumen query edit

  # Launch by identifier, detached from this terminal
  lumen launch org.gnome.TextEditor

  # Keep the index current in the background
  lumen watch --daemon`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("lumen: desktop application launcher core")
			fmt.Println()
			fmt.Println("Run 'lumen scan' to build the application index.")
			fmt.Println("Run 'lumen --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: $XDG_DATA_HOME/lumen/lumen.db)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2

	// Register subcommands
	RootCmd.AddCommand(scanCmd)
	RootCmd.AddCommand(queryCmd)
	RootCmd.AddCommand(launchCmd)
	RootCmd.AddCommand(watchCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// getDBPath returns the database path, using the flag value or default
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}

	dataDir := filepath.Join(xdg.DataHome, "lumen")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return filepath.Join(dataDir, "lumen.db"), nil
}

// getDefaultPIDFile returns the default PID file path
func getDefaultPIDFile() (string, error) {
	stateDir := filepath.Join(xdg.StateHome, "lumen")
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return filepath.Join(stateDir, "watch.pid"), nil
}

// getDefaultLogFile returns the default log file path
func getDefaultLogFile() (string, error) {
	stateDir := filepath.Join(xdg.StateHome, "lumen")
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return filepath.Join(stateDir, "watch.log"), nil
}
