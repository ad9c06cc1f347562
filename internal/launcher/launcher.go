// Package launcher ties the scanner, index, search, icon, and store layers
// together behind the API the frontend drives.
package launcher

import (
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lumen-desktop/lumen/internal/config"
	"github.com/lumen-desktop/lumen/internal/desktop"
	"github.com/lumen-desktop/lumen/internal/icons"
	"github.com/lumen-desktop/lumen/internal/index"
	"github.com/lumen-desktop/lumen/internal/raster"
	"github.com/lumen-desktop/lumen/internal/scanner"
	"github.com/lumen-desktop/lumen/internal/search"
	"github.com/lumen-desktop/lumen/internal/store"
)

// ErrUnknownApp is returned when a launch targets an identifier that is not
// in the current index.
var ErrUnknownApp = errors.New("unknown application")

// ErrNoIcon is returned when neither the entry's icon nor the generic
// fallback could be resolved.
var ErrNoIcon = errors.New("no icon found")

// LaunchError wraps a failure to start an application, carrying the
// identifier for the frontend to report.
type LaunchError struct {
	AppID string
	Err   error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.AppID, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// RebuildOutcome is delivered on the channel returned by RebuildAsync.
type RebuildOutcome struct {
	Result *scanner.Result
	Err    error
}

// IconResult is delivered to the frontend for an asynchronous icon request.
// Results carrying a stale generation must be discarded on arrival.
type IconResult struct {
	Generation uint64
	AppID      string
	Image      *image.RGBA
	Err        error
}

// Launcher owns the shared state: the atomically swapped index, the usage
// snapshot used for I/O-free scoring, and the query generation counter.
type Launcher struct {
	cfg      *config.Config
	store    *store.Store
	handle   *index.Handle
	scorer   *search.Scorer
	resolver *icons.Resolver
	cache    *raster.Cache

	usage      atomic.Pointer[store.Usage]
	generation atomic.Uint64

	// mu serializes launch recording so no two launches race on the usage
	// snapshot swap.
	mu sync.Mutex

	// start, now, and appDirs are swapped by tests.
	start   func(*exec.Cmd) error
	now     func() time.Time
	appDirs func() []string
}

// New builds a Launcher over an open store. The index starts empty; call
// Rebuild (or RebuildAsync) to populate it.
func New(cfg *config.Config, st *store.Store, resolver *icons.Resolver, cache *raster.Cache) (*Launcher, error) {
	l := &Launcher{
		cfg:      cfg,
		store:    st,
		handle:   index.NewHandle(),
		scorer:   search.NewScorer(cfg.SimilarityFloor),
		resolver: resolver,
		cache:    cache,
		start:    func(cmd *exec.Cmd) error { return cmd.Start() },
		now:      time.Now,
		appDirs:  desktop.ApplicationDirs,
	}

	usage, err := st.LoadUsage(l.usageWindowStart())
	if err != nil {
		return nil, fmt.Errorf("failed to load usage history: %w", err)
	}
	l.usage.Store(usage)

	return l, nil
}

// Index returns the current immutable index.
func (l *Launcher) Index() *index.Index {
	return l.handle.Load()
}

// Usage returns the current usage snapshot.
func (l *Launcher) Usage() *store.Usage {
	return l.usage.Load()
}

// Rebuild scans the application directories, refreshes the apps snapshot in
// the store, and swaps the new index in. Readers holding the old index keep
// a consistent view until their next load.
func (l *Launcher) Rebuild() (*scanner.Result, error) {
	dirs := append(l.appDirs(), l.cfg.ExtraApplicationDirs...)
	res := scanner.Scan(dirs)

	if err := l.store.ReplaceApps(res.Index.All(), l.now()); err != nil {
		return res, fmt.Errorf("failed to persist scanned applications: %w", err)
	}

	l.handle.Swap(res.Index)

	if err := l.reloadUsage(); err != nil {
		return res, err
	}

	return res, nil
}

// RebuildAsync runs Rebuild on a background goroutine and delivers the
// outcome on the returned channel.
func (l *Launcher) RebuildAsync() <-chan RebuildOutcome {
	ch := make(chan RebuildOutcome, 1)
	go func() {
		res, err := l.Rebuild()
		ch <- RebuildOutcome{Result: res, Err: err}
	}()
	return ch
}

// Query scores the visible entries against the query and returns the ranked
// results with the generation assigned to this query. Submitting a query
// invalidates all earlier generations.
func (l *Launcher) Query(query string) ([]search.Result, uint64) {
	gen := l.generation.Add(1)

	results := l.scorer.Rank(query, l.handle.Load(), l.usage.Load())
	if l.cfg.ResultLimit > 0 && len(results) > l.cfg.ResultLimit {
		results = results[:l.cfg.ResultLimit]
	}
	return results, gen
}

// Stale reports whether a generation has been superseded by a newer query.
func (l *Launcher) Stale(gen uint64) bool {
	return gen != l.generation.Load()
}

// IconFor resolves and rasterizes the entry's icon at the given pixel size.
func (l *Launcher) IconFor(e *desktop.Entry, size int) (*image.RGBA, error) {
	ref := e.Icon
	if ref == "" {
		ref = icons.GenericIcon
	}

	resolved, ok := l.resolver.Resolve(ref, size)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoIcon, ref)
	}

	img, err := l.cache.Get(resolved, size)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize %s: %w", resolved.Path, err)
	}
	return img, nil
}

// RequestIcon resolves an entry's icon on a background goroutine and
// delivers the result, tagged with the requesting generation, on out. The
// receiver drops results whose generation is stale.
func (l *Launcher) RequestIcon(e *desktop.Entry, size int, gen uint64, out chan<- IconResult) {
	go func() {
		img, err := l.IconFor(e, size)
		out <- IconResult{Generation: gen, AppID: e.ID, Image: img, Err: err}
	}()
}

// Launch starts the application detached in its own session, so it survives
// this process exiting. Usage is recorded only after the process starts.
func (l *Launcher) Launch(id string, extraArgs []string) error {
	entry, ok := l.handle.Load().Get(id)
	if !ok {
		return &LaunchError{AppID: id, Err: ErrUnknownApp}
	}

	argv, err := desktop.BuildCommand(entry, l.cfg.Terminal, extraArgs)
	if err != nil {
		return &LaunchError{AppID: id, Err: err}
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if entry.WorkingDir != "" {
		cmd.Dir = entry.WorkingDir
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := l.start(cmd); err != nil {
		return &LaunchError{AppID: id, Err: err}
	}
	if cmd.Process != nil {
		_ = cmd.Process.Release()
	}

	l.recordLaunch(id)
	return nil
}

// recordLaunch persists the event and swaps in an incremented usage
// snapshot. Serialized so concurrent launches do not lose increments.
// A history write failure degrades to session-only usage: the launch
// already succeeded, so it must not be reported as failed.
func (l *Launcher) recordLaunch(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.usage.Store(l.usage.Load().Incremented(id))

	if err := l.store.RecordLaunch(id, l.now()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to record launch of %s: %v\n", id, err)
	}
}

// reloadUsage replaces the usage snapshot from the store. Taken under mu so
// a concurrent recordLaunch increment cannot be overwritten by a snapshot
// loaded before it landed.
func (l *Launcher) reloadUsage() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	usage, err := l.store.LoadUsage(l.usageWindowStart())
	if err != nil {
		return fmt.Errorf("failed to reload usage history: %w", err)
	}
	l.usage.Store(usage)
	return nil
}

// PruneExpired removes launch events older than the usage window and
// refreshes the in-memory snapshot.
func (l *Launcher) PruneExpired() (int64, error) {
	n, err := l.store.PruneEvents(l.usageWindowStart())
	if err != nil {
		return 0, fmt.Errorf("failed to prune launch events: %w", err)
	}

	if err := l.reloadUsage(); err != nil {
		return n, err
	}

	return n, nil
}

func (l *Launcher) usageWindowStart() time.Time {
	return l.now().AddDate(0, 0, -l.cfg.UsageWindowDays)
}
