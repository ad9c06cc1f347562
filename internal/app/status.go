package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumen-desktop/lumen/internal/config"
	"github.com/lumen-desktop/lumen/internal/watcher"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check daemon status and index statistics",
	Long: `Display the current state of the lumen installation.

Shows:
  • Watch daemon running status and PID
  • Database location, indexed application count, launch event count
  • Config file location and the active icon theme`,
	Example: `  # Check status
  lumen status`,
	RunE: runStatus,
}

func init() {
	// Register with root command
	RootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	pidFile, err := getDefaultPIDFile()
	if err != nil {
		return fmt.Errorf("failed to get PID file path: %w", err)
	}

	path, err := getDBPath()
	if err != nil {
		return fmt.Errorf("failed to get database path: %w", err)
	}

	daemonRunning, err := watcher.IsDaemonRunning(pidFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	fmt.Println("lumen status")
	fmt.Println(strings.Repeat("─", 40))

	if daemonRunning {
		pid := "?"
		if data, err := os.ReadFile(pidFile); err == nil {
			if n, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
				pid = strconv.Itoa(n)
			}
		}
		fmt.Printf("Watch daemon:  running (PID %s)\n", pid)
	} else {
		fmt.Println("Watch daemon:  not running")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	fmt.Printf("Config file:   %s\n", config.Path())
	fmt.Printf("Icon theme:    %s (%dpx)\n", cfg.IconTheme, cfg.IconSize)
	fmt.Printf("Icon cache:    %s\n", iconCacheDir())

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	apps, err := st.ListApps()
	if err != nil {
		return fmt.Errorf("failed to list applications: %w", err)
	}

	events, err := st.EventCount()
	if err != nil {
		return fmt.Errorf("failed to count launch events: %w", err)
	}

	fmt.Printf("Database:      %s\n", path)
	fmt.Printf("Applications:  %d indexed\n", len(apps))
	fmt.Printf("Launch events: %d recorded\n", events)

	if len(apps) == 0 {
		fmt.Println()
		fmt.Println("Run 'lumen scan' to build the application index.")
	}

	return nil
}
