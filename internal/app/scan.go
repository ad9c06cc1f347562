package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumen-desktop/lumen/internal/config"
	"github.com/lumen-desktop/lumen/internal/output"
)

var (
	scanQuiet bool

	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Rebuild the application index from descriptor directories",
		Long: `Scan the XDG application directories, parse every .desktop descriptor,
and store the resulting application snapshot in the lumen database.

Directories earlier in the XDG precedence order win: the first descriptor
seen for an identifier shadows later ones. Malformed descriptors are
reported and skipped; they never abort the scan.

The scan command should be run:
  • After installing lumen for the first time
  • After installing or removing applications
  • Automatically, by running 'lumen watch'`,
		Example: `  # Rebuild the index
  lumen scan

  # Rebuild quietly (suppress the summary)
  lumen scan --quiet`,
		RunE: runScan,
	}
)

func init() {
	scanCmd.Flags().BoolVar(&scanQuiet, "quiet", false, "suppress output")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	l, err := newLauncher(cfg, st)
	if err != nil {
		return err
	}

	res, err := l.Rebuild()
	if err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}

	if !scanQuiet {
		fmt.Print(output.RenderScanSummary(res))
	}

	return nil
}
