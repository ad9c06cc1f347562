// Package output provides terminal output utilities for lumen.
//
// All table rendering functions return plain strings built with ASCII
// alignment and optional ANSI colors, so callers can print or capture them.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/lumen-desktop/lumen/internal/scanner"
	"github.com/lumen-desktop/lumen/internal/search"
	"github.com/lumen-desktop/lumen/internal/store"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderResultsTable renders ranked query results. Results arrive already
// ordered by score; usage supplies the launch counts shown alongside.
func RenderResultsTable(results []search.Result, usage *store.Usage) string {
	if len(results) == 0 {
		return "No matching applications.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-24s %-28s %-7s %s\n",
		"ID", "Name", "Score", "Launches"))
	sb.WriteString(strings.Repeat("─", 70))
	sb.WriteString("\n")

	for _, res := range results {
		count := 0
		if usage != nil {
			count = usage.Count(res.Entry.ID)
		}

		scoreStr := fmt.Sprintf("%.3f", res.Score)
		if res.Similarity >= 0.999 {
			scoreStr = colorize(colorGreen, scoreStr)
		}

		sb.WriteString(fmt.Sprintf("%-24s %-28s %-7s %d\n",
			truncate(res.Entry.ID, 24),
			truncate(res.Entry.Name, 28),
			scoreStr,
			count))
	}

	return sb.String()
}

// RenderStatsTable renders per-application launch statistics.
func RenderStatsTable(stats []*store.AppStats) string {
	if len(stats) == 0 {
		return "No launches recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-24s %-28s %-9s %s\n",
		"ID", "Name", "Launches", "Last Used"))
	sb.WriteString(strings.Repeat("─", 78))
	sb.WriteString("\n")

	for _, st := range stats {
		lastUsed := "never"
		if st.LastUsed != nil {
			lastUsed = formatRelativeTime(*st.LastUsed)
		}

		sb.WriteString(fmt.Sprintf("%-24s %-28s %-9d %s\n",
			truncate(st.AppID, 24),
			truncate(st.Name, 28),
			st.Launches,
			lastUsed))
	}

	return sb.String()
}

// RenderScanSummary reports the outcome of a scan, including skipped
// descriptors and unreadable directories as dimmed diagnostics.
func RenderScanSummary(res *scanner.Result) string {
	var sb strings.Builder

	visible := len(res.Index.Visible())
	hidden := res.Index.Len() - visible
	sb.WriteString(fmt.Sprintf("Indexed %d applications (%d hidden).\n", res.Index.Len(), hidden))

	for _, dir := range res.UnreadableDirs {
		sb.WriteString(colorize(colorYellow, fmt.Sprintf("  unreadable directory: %s\n", dir)))
	}
	for _, sk := range res.Skipped {
		sb.WriteString(colorize(colorGray, fmt.Sprintf("  skipped %s: %v\n", sk.Path, sk.Err)))
	}

	return sb.String()
}

// formatRelativeTime renders a timestamp as a human-readable age.
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		months := int(diff.Hours() / 24 / 30)
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	}
}

// truncate shortens s to maxLen runes of ASCII, appending "..." when cut.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
