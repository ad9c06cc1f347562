package desktop

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// ApplicationDirs returns the ordered list of directories searched for
// .desktop files: $XDG_DATA_HOME/applications first, then each entry of
// $XDG_DATA_DIRS. Order matters — the scanner keeps the first occurrence of
// each identifier, so user-local entries shadow system ones.
func ApplicationDirs() []string {
	dirs := make([]string, 0, len(xdg.DataDirs)+1)
	dirs = append(dirs, filepath.Join(xdg.DataHome, "applications"))
	for _, dir := range xdg.DataDirs {
		dirs = append(dirs, filepath.Join(dir, "applications"))
	}
	return dedupDirs(dirs)
}

// IconBaseDirs returns the ordered base directories searched for icon
// themes, ending with the flat pixmaps directories used as a last-resort
// themeless lookup.
func IconBaseDirs() []string {
	dirs := make([]string, 0, 2*len(xdg.DataDirs)+4)
	dirs = append(dirs, filepath.Join(xdg.Home, ".icons"))
	dirs = append(dirs, filepath.Join(xdg.DataHome, "icons"))
	for _, dir := range xdg.DataDirs {
		dirs = append(dirs, filepath.Join(dir, "icons"))
	}
	dirs = append(dirs, filepath.Join(xdg.DataHome, "pixmaps"))
	for _, dir := range xdg.DataDirs {
		dirs = append(dirs, filepath.Join(dir, "pixmaps"))
	}
	return dedupDirs(dirs)
}

func dedupDirs(dirs []string) []string {
	seen := make(map[string]struct{}, len(dirs))
	out := dirs[:0]
	for _, d := range dirs {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
