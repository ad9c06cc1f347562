package icons

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Format tags the file format of a resolved icon. It is a closed set: the
// rasterizer selects its decoding strategy by this tag alone.
type Format int

const (
	FormatVector    Format = iota // .svg
	FormatRaster                  // .png and friends
	FormatContainer               // .ico multi-resolution bundles
)

// ResolvedIcon is the outcome of a successful icon lookup.
type ResolvedIcon struct {
	Path   string
	Format Format
}

// GenericIcon is the standard "unknown application" icon name tried as the
// very last resort before reporting a miss.
const GenericIcon = "application-x-executable"

// fallbackThemes are tried after the configured theme's parent chain is
// exhausted.
var fallbackThemes = []string{"hicolor", "Adwaita", "breeze"}

// extensions in preference order: vector, then raster, then container.
// .xpm is deliberately unsupported.
var extensions = []string{".svg", ".png", ".ico"}

// Resolver maps icon references to files on disk. Lookups are memoized for
// the process lifetime: themes are assumed stable while running.
type Resolver struct {
	themeName string
	baseDirs  []string

	mu     sync.Mutex
	themes map[string]*Theme       // nil value = known missing
	cache  map[string]ResolvedIcon // ref+size → result
	misses map[string]struct{}     // ref+size known unresolvable
}

// NewResolver creates a Resolver searching the given base directories with
// the named theme first. Theme manifests are loaded lazily on first use.
func NewResolver(themeName string, baseDirs []string) *Resolver {
	return &Resolver{
		themeName: themeName,
		baseDirs:  baseDirs,
		themes:    make(map[string]*Theme),
		cache:     make(map[string]ResolvedIcon),
		misses:    make(map[string]struct{}),
	}
}

// Resolve maps an icon reference to a concrete file for the preferred pixel
// size. Absolute paths are returned directly when the file exists. A failed
// lookup is not an error: the second return value is false and the caller
// shows a placeholder.
func (r *Resolver) Resolve(ref string, size int) (ResolvedIcon, bool) {
	if ref == "" {
		return ResolvedIcon{}, false
	}

	if filepath.IsAbs(ref) {
		if _, err := os.Stat(ref); err == nil {
			return ResolvedIcon{Path: ref, Format: formatOf(ref)}, true
		}
		return ResolvedIcon{}, false
	}

	key := cacheKey(ref, size)

	r.mu.Lock()
	defer r.mu.Unlock()

	if icon, ok := r.cache[key]; ok {
		return icon, true
	}
	if _, miss := r.misses[key]; miss {
		return ResolvedIcon{}, false
	}

	icon, ok := r.lookupLocked(ref, size)
	if !ok {
		icon, ok = r.lookupLocked(GenericIcon, size)
	}

	if ok {
		r.cache[key] = icon
	} else {
		r.misses[key] = struct{}{}
	}
	return icon, ok
}

// lookupLocked walks the theme chain, then the flat base directories.
func (r *Resolver) lookupLocked(name string, size int) (ResolvedIcon, bool) {
	for _, themeName := range r.themeChain() {
		theme := r.themeLocked(themeName)
		if theme == nil {
			continue
		}
		if icon, ok := findInTheme(theme, name, size); ok {
			return icon, true
		}
	}

	// Themeless flat directories (pixmaps and friends).
	for _, base := range r.baseDirs {
		if icon, ok := findInDir(base, name); ok {
			return icon, true
		}
	}

	return ResolvedIcon{}, false
}

// themeChain returns the configured theme, its parents breadth-first, then
// the hardcoded fallbacks, without duplicates.
func (r *Resolver) themeChain() []string {
	var (
		chain   []string
		visited = map[string]struct{}{}
		queue   = []string{r.themeName}
	)
	queue = append(queue, fallbackThemes...)

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if name == "" {
			continue
		}
		if _, seen := visited[name]; seen {
			continue
		}
		visited[name] = struct{}{}
		chain = append(chain, name)

		if theme := r.themeLocked(name); theme != nil {
			// Parents slot in right after their child, before fallbacks.
			next := make([]string, 0, len(theme.Parents)+len(queue))
			next = append(next, theme.Parents...)
			next = append(next, queue...)
			queue = next
		}
	}
	return chain
}

// themeLocked returns the lazily loaded theme, nil if absent on disk.
func (r *Resolver) themeLocked(name string) *Theme {
	if theme, ok := r.themes[name]; ok {
		return theme
	}
	theme := loadTheme(name, r.baseDirs)
	r.themes[name] = theme
	return theme
}

// findInTheme searches one theme's directories ordered by closeness to the
// requested size and returns the first hit.
func findInTheme(theme *Theme, name string, size int) (ResolvedIcon, bool) {
	for _, dir := range orderDirs(theme.Dirs, size) {
		if icon, ok := findInDir(dir.Path, name); ok {
			return icon, true
		}
	}
	return ResolvedIcon{}, false
}

// orderDirs sorts theme directories by preference for a target size:
// exact matches first, then the next-larger sizes ascending, then scalable
// entries, then smaller sizes descending. Scalable ranks above smaller
// rasters because a vector renders at full quality while a smaller raster
// would have to be upscaled.
func orderDirs(dirs []ThemeDir, size int) []ThemeDir {
	ordered := make([]ThemeDir, len(dirs))
	copy(ordered, dirs)

	sort.SliceStable(ordered, func(i, j int) bool {
		return dirRank(ordered[i], size) < dirRank(ordered[j], size)
	})
	return ordered
}

// dirRank maps a directory to an orderable preference value; lower is
// better.
func dirRank(d ThemeDir, size int) int {
	const (
		classExact    = 0 << 24
		classLarger   = 1 << 24
		classScalable = 2 << 24
		classSmaller  = 3 << 24
	)

	if d.Type == DirScalable {
		return classScalable
	}

	effective := d.Size * d.Scale
	switch {
	case effective == size:
		return classExact
	case effective > size:
		return classLarger + (effective - size)
	default:
		return classSmaller + (size - effective)
	}
}

// findInDir checks a single directory for <name>.<ext> in the fixed
// extension preference order.
func findInDir(dir, name string) (ResolvedIcon, bool) {
	for _, ext := range extensions {
		path := filepath.Join(dir, name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return ResolvedIcon{Path: path, Format: formatOf(path)}, true
		}
	}
	return ResolvedIcon{}, false
}

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return FormatVector
	case ".ico":
		return FormatContainer
	default:
		return FormatRaster
	}
}

func cacheKey(ref string, size int) string {
	return ref + "\x00" + strconv.Itoa(size)
}
