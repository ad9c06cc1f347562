package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumen-desktop/lumen/internal/output"
	"github.com/lumen-desktop/lumen/internal/store"
)

var (
	statsDays int
	statsApp  string
)

// statsStore is the slice of the store the single-app view needs; tests
// substitute a fake.
type statsStore interface {
	UsageCounts(since time.Time) (map[string]int, error)
	LastUsed(id string) (*time.Time, error)
	GetApp(id string) (*store.App, error)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show launch statistics for applications",
	Long: `Display launch counts and recency for indexed applications.

Without flags, shows every application launched inside the time window,
most-launched first. Use --app to inspect a single application and --days
to adjust the window.`,
	Example: `  # Launch counts for the last 30 days
  lumen stats

  # A shorter window
  lumen stats --days 7

  # One application in detail
  lumen stats --app org.mozilla.firefox`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsDays, "days", 30, "time window in days")
	statsCmd.Flags().StringVar(&statsApp, "app", "", "show stats for a single application")

	// Register with root command
	RootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsDays <= 0 {
		return fmt.Errorf("invalid days: %d (must be positive)", statsDays)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	since := time.Now().AddDate(0, 0, -statsDays)

	if statsApp != "" {
		return runAppStats(st, statsApp, since)
	}

	stats, err := st.ListStats(since)
	if err != nil {
		return fmt.Errorf("failed to load launch statistics: %w", err)
	}

	fmt.Printf("Launches in the last %d days:\n\n", statsDays)
	fmt.Print(output.RenderStatsTable(stats))
	return nil
}

func runAppStats(st statsStore, id string, since time.Time) error {
	counts, err := st.UsageCounts(since)
	if err != nil {
		return fmt.Errorf("failed to load usage counts: %w", err)
	}

	lastUsed, err := st.LastUsed(id)
	if err != nil {
		return fmt.Errorf("failed to load last launch: %w", err)
	}

	name := id
	if app, err := st.GetApp(id); err == nil {
		name = app.Name
	}

	fmt.Printf("%s (%s)\n", name, id)
	fmt.Printf("  Launches: %d\n", counts[id])
	if lastUsed == nil {
		fmt.Printf("  Last used: never\n")
	} else {
		fmt.Printf("  Last used: %s\n", lastUsed.Format(time.RFC1123))
	}
	return nil
}
