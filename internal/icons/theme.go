// Package icons resolves icon references against freedesktop icon themes:
// it walks the configured theme, its parent chain, and a set of fallback
// themes to map an icon name to a concrete file on disk.
package icons

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// DirType classifies a theme subdirectory per its index manifest.
type DirType int

const (
	DirFixed DirType = iota
	DirScalable
	DirThreshold
)

// ThemeDir is one search node of a theme: a subdirectory with its nominal
// size and scale factor.
type ThemeDir struct {
	// Path is the absolute directory path.
	Path string

	// Subdir is the manifest-relative name, e.g. "48x48/apps".
	Subdir string

	Size  int
	Scale int
	Type  DirType
}

// Theme is a parsed icon theme: an ordered list of search directories plus
// the parent themes used for fallback chaining. Themes are read once per
// resolver initialization and are read-only afterwards.
type Theme struct {
	Name    string
	Parents []string
	Dirs    []ThemeDir
}

// loadTheme locates and parses the named theme across the base directories.
// A theme may be spread over several bases (e.g. user overrides under
// ~/.icons plus the system copy); all of their directories are merged in
// base order. Returns nil when no base contains the theme.
func loadTheme(name string, baseDirs []string) *Theme {
	theme := &Theme{Name: name}

	for _, base := range baseDirs {
		root := filepath.Join(base, name)
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}

		manifest := filepath.Join(root, "index.theme")
		if dirs, parents, err := parseManifest(manifest, root); err == nil {
			theme.Dirs = append(theme.Dirs, dirs...)
			for _, p := range parents {
				theme.Parents = appendUnique(theme.Parents, p)
			}
			continue
		}

		// No readable manifest: synthesize search nodes from the directory
		// names themselves (48x48, scalable, ...). Real systems ship themes
		// without manifests often enough that skipping them loses icons.
		theme.Dirs = append(theme.Dirs, synthesizeDirs(root)...)
	}

	if len(theme.Dirs) == 0 {
		return nil
	}
	return theme
}

// parseManifest reads an index.theme file and returns the theme's search
// directories (resolved against root) and parent names.
func parseManifest(path, root string) ([]ThemeDir, []string, error) {
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	sec, err := f.GetSection("Icon Theme")
	if err != nil {
		return nil, nil, fmt.Errorf("%s: no [Icon Theme] section", path)
	}

	var parents []string
	for _, p := range strings.Split(sec.Key("Inherits").String(), ",") {
		if p = strings.TrimSpace(p); p != "" {
			parents = append(parents, p)
		}
	}

	var dirs []ThemeDir
	for _, sub := range strings.Split(sec.Key("Directories").String(), ",") {
		sub = strings.TrimSpace(sub)
		if sub == "" {
			continue
		}
		dirSec, err := f.GetSection(sub)
		if err != nil {
			continue // listed but undescribed, skip
		}

		d := ThemeDir{
			Path:   filepath.Join(root, filepath.FromSlash(sub)),
			Subdir: sub,
			Size:   dirSec.Key("Size").MustInt(0),
			Scale:  dirSec.Key("Scale").MustInt(1),
		}
		switch dirSec.Key("Type").String() {
		case "Scalable":
			d.Type = DirScalable
		case "Threshold":
			d.Type = DirThreshold
		default:
			d.Type = DirFixed
		}
		dirs = append(dirs, d)
	}

	return dirs, parents, nil
}

// synthesizeDirs builds search nodes for a manifest-less theme by parsing
// size information out of the subdirectory names: "48x48", "scalable",
// "32x32@2x", plain "64". Unrecognized names are still searched, sized zero.
func synthesizeDirs(root string) []ThemeDir {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var dirs []ThemeDir
	for _, de := range entries {
		if !de.IsDir() {
			continue
		}
		d := parseDirName(de.Name())
		d.Path = filepath.Join(root, de.Name())
		d.Subdir = de.Name()
		dirs = append(dirs, d)

		// One level of context subdirectories (apps, places, ...).
		subEntries, err := os.ReadDir(d.Path)
		if err != nil {
			continue
		}
		for _, sub := range subEntries {
			if !sub.IsDir() {
				continue
			}
			nested := d
			nested.Path = filepath.Join(d.Path, sub.Name())
			nested.Subdir = filepath.Join(d.Subdir, sub.Name())
			dirs = append(dirs, nested)
		}
	}
	return dirs
}

// parseDirName extracts size and scale from a conventional theme directory
// name.
func parseDirName(name string) ThemeDir {
	d := ThemeDir{Scale: 1, Type: DirFixed}

	if base, scale, ok := strings.Cut(name, "@"); ok {
		scale = strings.TrimSuffix(scale, "x")
		if n, err := strconv.Atoi(scale); err == nil && n > 0 {
			d.Scale = n
		}
		name = base
	}

	if name == "scalable" {
		d.Type = DirScalable
		return d
	}

	if w, h, ok := strings.Cut(name, "x"); ok {
		wn, werr := strconv.Atoi(w)
		hn, herr := strconv.Atoi(h)
		if werr == nil && herr == nil {
			if hn > wn {
				wn = hn
			}
			d.Size = wn
			return d
		}
	}

	if n, err := strconv.Atoi(name); err == nil {
		d.Size = n
	}
	return d
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
