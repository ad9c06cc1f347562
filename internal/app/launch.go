package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumen-desktop/lumen/internal/config"
	"github.com/lumen-desktop/lumen/internal/launcher"
)

var launchCmd = &cobra.Command{
	Use:   "launch <id> [-- args...]",
	Short: "Launch an application by identifier",
	Long: `Start the application with the given identifier, detached in its own
session so it keeps running after lumen exits. Arguments after -- are
substituted into the descriptor's Exec field codes.

Terminal applications are wrapped in the configured terminal emulator.
The launch is recorded in usage history only if the process starts.`,
	Example: `  # Launch by identifier
  lumen launch org.mozilla.firefox

  # Pass a file to open
  lumen launch org.gnome.TextEditor -- /tmp/notes.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLaunch,
}

func runLaunch(cmd *cobra.Command, args []string) error {
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

	if _, err := l.Rebuild(); err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}

	id := args[0]
	if err := l.Launch(id, args[1:]); err != nil {
		if errors.Is(err, launcher.ErrUnknownApp) {
			return fmt.Errorf("no application with identifier %q (try 'lumen query %s')", id, id)
		}
		return err
	}

	fmt.Printf("Launched %s\n", id)
	return nil
}
