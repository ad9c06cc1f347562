package launcher

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lumen-desktop/lumen/internal/config"
	"github.com/lumen-desktop/lumen/internal/icons"
	"github.com/lumen-desktop/lumen/internal/raster"
	"github.com/lumen-desktop/lumen/internal/store"
)

func writeDescriptor(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeIconPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 180, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func setupLauncher(t *testing.T, appDir string) *Launcher {
	t.Helper()

	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.CreateSchema(); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	iconBase := t.TempDir()
	writeIconPNG(t, filepath.Join(iconBase, "editor.png"))

	cfg := config.Default()
	resolver := icons.NewResolver(cfg.IconTheme, []string{iconBase})
	cache := raster.NewCache("")

	l, err := New(cfg, st, resolver, cache)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	l.appDirs = func() []string { return []string{appDir} }
	l.start = func(*exec.Cmd) error { return nil }

	return l
}

const editorDescriptor = `[Desktop Entry]
Name=Editor
Exec=editor %U
Icon=editor
`

const hiddenDescriptor = `[Desktop Entry]
Name=Helper
Exec=helper
NoDisplay=true
`

func TestLauncher_RebuildPopulatesIndex(t *testing.T) {
	appDir := t.TempDir()
	writeDescriptor(t, appDir, "editor.desktop", editorDescriptor)
	writeDescriptor(t, appDir, "helper.desktop", hiddenDescriptor)

	l := setupLauncher(t, appDir)

	if l.Index().Len() != 0 {
		t.Fatal("index should start empty")
	}

	res, err := l.Rebuild()
	if err != nil {
		t.Fatalf("Rebuild() failed: %v", err)
	}
	if res.Index.Len() != 2 {
		t.Errorf("indexed %d entries, want 2", res.Index.Len())
	}
	if len(l.Index().Visible()) != 1 {
		t.Errorf("visible entries = %d, want 1", len(l.Index().Visible()))
	}

	// The apps snapshot lands in the store for stats to label.
	app, err := l.store.GetApp("editor")
	if err != nil {
		t.Fatalf("GetApp() failed: %v", err)
	}
	if app.Name != "Editor" {
		t.Errorf("stored name = %q, want %q", app.Name, "Editor")
	}
}

func TestLauncher_RebuildAsyncDelivers(t *testing.T) {
	appDir := t.TempDir()
	writeDescriptor(t, appDir, "editor.desktop", editorDescriptor)

	l := setupLauncher(t, appDir)

	outcome := <-l.RebuildAsync()
	if outcome.Err != nil {
		t.Fatalf("async rebuild failed: %v", outcome.Err)
	}
	if l.Index().Len() != 1 {
		t.Error("index not swapped after async rebuild")
	}
}

func TestLauncher_QueryGenerations(t *testing.T) {
	appDir := t.TempDir()
	writeDescriptor(t, appDir, "editor.desktop", editorDescriptor)

	l := setupLauncher(t, appDir)
	if _, err := l.Rebuild(); err != nil {
		t.Fatal(err)
	}

	results, gen1 := l.Query("editor")
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if l.Stale(gen1) {
		t.Error("latest generation must not be stale")
	}

	_, gen2 := l.Query("edit")
	if !l.Stale(gen1) {
		t.Error("superseded generation must be stale")
	}
	if l.Stale(gen2) {
		t.Error("newest generation must not be stale")
	}
}

func TestLauncher_QueryRespectsResultLimit(t *testing.T) {
	appDir := t.TempDir()
	writeDescriptor(t, appDir, "editor.desktop", editorDescriptor)
	writeDescriptor(t, appDir, "editor2.desktop", "[Desktop Entry]\nName=Editor Two\nExec=editor2\n")

	l := setupLauncher(t, appDir)
	l.cfg.ResultLimit = 1
	if _, err := l.Rebuild(); err != nil {
		t.Fatal(err)
	}

	results, _ := l.Query("editor")
	if len(results) != 1 {
		t.Errorf("got %d results, want limit of 1", len(results))
	}
}

func TestLauncher_LaunchRecordsUsage(t *testing.T) {
	appDir := t.TempDir()
	writeDescriptor(t, appDir, "editor.desktop", editorDescriptor)

	l := setupLauncher(t, appDir)
	if _, err := l.Rebuild(); err != nil {
		t.Fatal(err)
	}

	if err := l.Launch("editor", nil); err != nil {
		t.Fatalf("Launch() failed: %v", err)
	}

	if got := l.Usage().Count("editor"); got != 1 {
		t.Errorf("usage count = %d, want 1", got)
	}

	// The event is persisted, not just held in memory.
	counts, err := l.store.UsageCounts(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if counts["editor"] != 1 {
		t.Errorf("persisted count = %d, want 1", counts["editor"])
	}
}

func TestLauncher_FailedLaunchLeavesUsageUnchanged(t *testing.T) {
	appDir := t.TempDir()
	writeDescriptor(t, appDir, "editor.desktop", editorDescriptor)

	l := setupLauncher(t, appDir)
	if _, err := l.Rebuild(); err != nil {
		t.Fatal(err)
	}

	spawnErr := errors.New("spawn failed")
	l.start = func(*exec.Cmd) error { return spawnErr }

	err := l.Launch("editor", nil)
	if err == nil {
		t.Fatal("Launch() should fail when the process cannot start")
	}
	var le *LaunchError
	if !errors.As(err, &le) || le.AppID != "editor" {
		t.Errorf("error = %v, want LaunchError for editor", err)
	}
	if !errors.Is(err, spawnErr) {
		t.Errorf("error should wrap the spawn failure, got %v", err)
	}

	if got := l.Usage().Count("editor"); got != 0 {
		t.Errorf("usage count after failed launch = %d, want 0", got)
	}
}

func TestLauncher_LaunchSucceedsWhenHistoryWriteFails(t *testing.T) {
	appDir := t.TempDir()
	writeDescriptor(t, appDir, "editor.desktop", editorDescriptor)

	l := setupLauncher(t, appDir)
	if _, err := l.Rebuild(); err != nil {
		t.Fatal(err)
	}

	// Closing the store makes RecordLaunch fail; the launch itself must
	// still succeed with session-only usage.
	if err := l.store.Close(); err != nil {
		t.Fatal(err)
	}

	if err := l.Launch("editor", nil); err != nil {
		t.Errorf("Launch() failed on a history write error: %v", err)
	}
	if got := l.Usage().Count("editor"); got != 1 {
		t.Errorf("session usage count = %d, want 1", got)
	}
}

func TestLauncher_ConcurrentLaunchesAndRebuildsKeepCounts(t *testing.T) {
	appDir := t.TempDir()
	writeDescriptor(t, appDir, "editor.desktop", editorDescriptor)

	l := setupLauncher(t, appDir)
	if _, err := l.Rebuild(); err != nil {
		t.Fatal(err)
	}

	const launches = 20
	var wg sync.WaitGroup
	for i := 0; i < launches; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Launch("editor", nil); err != nil {
				t.Errorf("Launch() failed: %v", err)
			}
		}()
		if i%5 == 0 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := l.Rebuild(); err != nil {
					t.Errorf("Rebuild() failed: %v", err)
				}
			}()
		}
	}
	wg.Wait()

	// Snapshot reloads are serialized with launch recording, so no
	// increment may be lost to a stale reload.
	if got := l.Usage().Count("editor"); got != launches {
		t.Errorf("usage count = %d, want %d", got, launches)
	}
}

func TestLauncher_LaunchUnknownApp(t *testing.T) {
	l := setupLauncher(t, t.TempDir())
	if _, err := l.Rebuild(); err != nil {
		t.Fatal(err)
	}

	err := l.Launch("nonexistent", nil)
	if !errors.Is(err, ErrUnknownApp) {
		t.Errorf("error = %v, want ErrUnknownApp", err)
	}
}

func TestLauncher_IconForRendersAtConfiguredSize(t *testing.T) {
	appDir := t.TempDir()
	writeDescriptor(t, appDir, "editor.desktop", editorDescriptor)

	l := setupLauncher(t, appDir)
	if _, err := l.Rebuild(); err != nil {
		t.Fatal(err)
	}

	entry, _ := l.Index().Get("editor")
	img, err := l.IconFor(entry, l.cfg.IconSize)
	if err != nil {
		t.Fatalf("IconFor() failed: %v", err)
	}
	if got := img.Bounds().Dx(); got != l.cfg.IconSize {
		t.Errorf("icon width = %d, want %d", got, l.cfg.IconSize)
	}

	// An explicit size wins over the configured default.
	large, err := l.IconFor(entry, 64)
	if err != nil {
		t.Fatalf("IconFor(64) failed: %v", err)
	}
	if got := large.Bounds().Dx(); got != 64 {
		t.Errorf("icon width = %d, want 64", got)
	}
}

func TestLauncher_RequestIconTagsGeneration(t *testing.T) {
	appDir := t.TempDir()
	writeDescriptor(t, appDir, "editor.desktop", editorDescriptor)

	l := setupLauncher(t, appDir)
	if _, err := l.Rebuild(); err != nil {
		t.Fatal(err)
	}

	_, gen := l.Query("editor")
	entry, _ := l.Index().Get("editor")

	ch := make(chan IconResult, 1)
	l.RequestIcon(entry, l.cfg.IconSize, gen, ch)

	res := <-ch
	if res.Err != nil {
		t.Fatalf("icon request failed: %v", res.Err)
	}
	if res.Generation != gen || res.AppID != "editor" {
		t.Errorf("result tagged gen=%d app=%s, want gen=%d app=editor", res.Generation, res.AppID, gen)
	}
	if l.Stale(res.Generation) {
		t.Error("result for the latest query must not be stale")
	}

	// A newer query supersedes the delivered generation.
	l.Query("something else")
	if !l.Stale(res.Generation) {
		t.Error("result must become stale once a newer query is submitted")
	}
}

func TestLauncher_PruneExpired(t *testing.T) {
	appDir := t.TempDir()
	writeDescriptor(t, appDir, "editor.desktop", editorDescriptor)

	l := setupLauncher(t, appDir)
	if _, err := l.Rebuild(); err != nil {
		t.Fatal(err)
	}

	old := time.Now().AddDate(0, 0, -l.cfg.UsageWindowDays-5)
	if err := l.store.RecordLaunch("editor", old); err != nil {
		t.Fatal(err)
	}
	if err := l.store.RecordLaunch("editor", time.Now()); err != nil {
		t.Fatal(err)
	}

	pruned, err := l.PruneExpired()
	if err != nil {
		t.Fatalf("PruneExpired() failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned %d events, want 1", pruned)
	}

	n, err := l.store.EventCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("remaining events = %d, want 1", n)
	}
	if got := l.Usage().Count("editor"); got != 1 {
		t.Errorf("usage count after prune = %d, want 1", got)
	}
}
