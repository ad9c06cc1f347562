// Package index holds the in-memory application index built by the scanner.
//
// An Index is immutable after construction. Rebuilds produce a fresh Index
// that readers adopt through a Handle's atomic swap, so the foreground never
// observes a partially built index.
package index

import (
	"sort"
	"sync/atomic"

	"github.com/lumen-desktop/lumen/internal/desktop"
)

// Index is an immutable snapshot of the scanned applications.
type Index struct {
	entries []*desktop.Entry
	byID    map[string]*desktop.Entry
	visible []*desktop.Entry
}

// New builds an Index from parsed entries. The first entry wins when two
// share an identifier, matching XDG directory precedence; callers must pass
// entries in search-path order. Entries are sorted by identifier so listing
// order is deterministic.
func New(entries []*desktop.Entry) *Index {
	byID := make(map[string]*desktop.Entry, len(entries))
	deduped := make([]*desktop.Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := byID[e.ID]; ok {
			continue
		}
		byID[e.ID] = e
		deduped = append(deduped, e)
	}

	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].ID < deduped[j].ID
	})

	visible := make([]*desktop.Entry, 0, len(deduped))
	for _, e := range deduped {
		if !e.Hidden {
			visible = append(visible, e)
		}
	}

	return &Index{
		entries: deduped,
		byID:    byID,
		visible: visible,
	}
}

// Get returns the entry with the given identifier.
func (ix *Index) Get(id string) (*desktop.Entry, bool) {
	e, ok := ix.byID[id]
	return e, ok
}

// All returns every entry, hidden ones included, ordered by identifier.
// The returned slice is shared and must not be mutated.
func (ix *Index) All() []*desktop.Entry {
	return ix.entries
}

// Visible returns the entries eligible for scoring, ordered by identifier.
// The returned slice is shared and must not be mutated.
func (ix *Index) Visible() []*desktop.Entry {
	return ix.visible
}

// Len returns the total number of entries, hidden ones included.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Handle is the foreground's reference to the current Index. Swaps are
// atomic: readers either see the previous complete index or the new one.
type Handle struct {
	current atomic.Pointer[Index]
}

// NewHandle creates a Handle holding an empty index.
func NewHandle() *Handle {
	h := &Handle{}
	h.current.Store(New(nil))
	return h
}

// Load returns the current index.
func (h *Handle) Load() *Index {
	return h.current.Load()
}

// Swap installs a fully built index and returns the previous one.
func (h *Handle) Swap(ix *Index) *Index {
	return h.current.Swap(ix)
}
