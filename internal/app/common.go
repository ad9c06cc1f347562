package app

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/lumen-desktop/lumen/internal/config"
	"github.com/lumen-desktop/lumen/internal/desktop"
	"github.com/lumen-desktop/lumen/internal/icons"
	"github.com/lumen-desktop/lumen/internal/launcher"
	"github.com/lumen-desktop/lumen/internal/raster"
	"github.com/lumen-desktop/lumen/internal/store"
)

// openStore opens the database named by --db (or the default path) and
// ensures the schema exists.
func openStore() (*store.Store, error) {
	path, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}

	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}

	return st, nil
}

// newLauncher wires a Launcher from the loaded config and an open store.
func newLauncher(cfg *config.Config, st *store.Store) (*launcher.Launcher, error) {
	resolver := icons.NewResolver(cfg.IconTheme, desktop.IconBaseDirs())
	cache := raster.NewCache(iconCacheDir())

	l, err := launcher.New(cfg, st, resolver, cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize launcher: %w", err)
	}
	return l, nil
}

// iconCacheDir returns the persistent raster cache location.
func iconCacheDir() string {
	return filepath.Join(xdg.CacheHome, "lumen", "icons")
}
