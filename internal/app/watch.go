package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lumen-desktop/lumen/internal/config"
	"github.com/lumen-desktop/lumen/internal/desktop"
	"github.com/lumen-desktop/lumen/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the index automatically when applications change",
		Long: `Watch the application directories and rebuild the index whenever
.desktop descriptors are added, changed, or removed. Changes are debounced
so a package installation triggers one rescan, not one per file.

While watching, launch events older than the usage window are pruned
periodically so the database does not grow without bound.

Watch modes:
  • Foreground (default): Run in current terminal with Ctrl+C to stop
  • Daemon: Run as a detached background process
  • Stop: Stop a running daemon`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  lumen watch

  # Run as background daemon
  lumen watch --daemon

  # Stop running daemon
  lumen watch --stop

  # Use custom PID and log files
  lumen watch --daemon --pid-file /tmp/lumen.pid --log-file /tmp/lumen.log`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: $XDG_STATE_HOME/lumen/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: $XDG_STATE_HOME/lumen/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchPIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return fmt.Errorf("failed to get default PID file path: %w", err)
		}
		watchPIDFile = defaultPID
	}

	if watchLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return fmt.Errorf("failed to get default log file path: %w", err)
		}
		watchLogFile = defaultLog
	}

	if watchStop {
		if err := watcher.StopDaemon(watchPIDFile); err != nil {
			return err
		}
		fmt.Println("Daemon stopped.")
		return nil
	}

	// The parent only forks; the child does the actual watching.
	if watchDaemon && !watchDaemonChild {
		if err := watcher.StartDaemon(watchPIDFile, watchLogFile); err != nil {
			return err
		}
		fmt.Printf("Daemon started (PID file: %s, log: %s)\n", watchPIDFile, watchLogFile)
		return nil
	}

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

	dirs := append(desktop.ApplicationDirs(), cfg.ExtraApplicationDirs...)
	w, err := watcher.New(l, dirs)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if watchDaemonChild {
		return w.RunDaemon(watchPIDFile)
	}

	if err := w.Start(); err != nil {
		return err
	}

	fmt.Println("Watching application directories (Ctrl+C to stop)...")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nStopping...")
	return w.Stop()
}
