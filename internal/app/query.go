package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumen-desktop/lumen/internal/config"
	"github.com/lumen-desktop/lumen/internal/launcher"
	"github.com/lumen-desktop/lumen/internal/output"
)

var (
	queryLimit int
	queryIcons bool

	queryCmd = &cobra.Command{
		Use:   "query [text...]",
		Short: "Rank applications against a fuzzy query",
		Long: `Score every visible application against the query text and print the
ranked results. Matching is fuzzy: close spellings, substrings, and
secondary fields (generic names, keywords) all contribute, and entries you
launch often rank higher.

With no query text, applications are listed by launch frequency alone.`,
		Example: `  # Find a browser by partial name
  lumen query fire

  # Typos still match
  lumen query firefx

  # Most-launched applications first
  lumen query

  # Show resolved icon files alongside results
  lumen query editor --icons`,
		RunE: runQuery,
	}
)

func init() {
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "maximum results to display (0 = config default)")
	queryCmd.Flags().BoolVar(&queryIcons, "icons", false, "resolve and show icon files for each result")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if queryLimit > 0 {
		cfg.ResultLimit = queryLimit
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

	if _, err := l.Rebuild(); err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}

	results, gen := l.Query(strings.Join(args, " "))
	fmt.Print(output.RenderResultsTable(results, l.Usage()))

	if queryIcons {
		ch := make(chan launcher.IconResult, len(results))
		for _, res := range results {
			l.RequestIcon(res.Entry, cfg.IconSize, gen, ch)
		}
		for range results {
			ir := <-ch
			if l.Stale(ir.Generation) {
				continue
			}
			if ir.Err != nil {
				fmt.Printf("  %-24s (no icon: %v)\n", ir.AppID, ir.Err)
				continue
			}
			fmt.Printf("  %-24s %dx%d icon rendered\n", ir.AppID, ir.Image.Bounds().Dx(), ir.Image.Bounds().Dy())
		}
	}

	return nil
}
