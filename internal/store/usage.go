package store

import "time"

// Usage is an immutable in-memory view of the launch counts inside the usage
// window. Scoring runs on every keystroke and is forbidden from touching the
// database, so the launcher loads a Usage snapshot once and refreshes it only
// after a launch or a rebuild.
type Usage struct {
	counts map[string]int
	max    int
}

// LoadUsage builds a Usage snapshot from the events recorded since the given
// time.
func (s *Store) LoadUsage(since time.Time) (*Usage, error) {
	counts, err := s.UsageCounts(since)
	if err != nil {
		return nil, err
	}
	return NewUsage(counts), nil
}

// NewUsage wraps a counts map in a snapshot. The map is owned by the snapshot
// afterwards and must not be mutated by the caller.
func NewUsage(counts map[string]int) *Usage {
	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	return &Usage{counts: counts, max: max}
}

// EmptyUsage returns a snapshot with no recorded launches. Used when the
// database is missing or corrupt: every entry starts at weight zero.
func EmptyUsage() *Usage {
	return &Usage{counts: map[string]int{}}
}

// Count returns the launch count for an identifier, zero when unknown.
func (u *Usage) Count(id string) int {
	return u.counts[id]
}

// Max returns the highest launch count in the snapshot.
func (u *Usage) Max() int {
	return u.max
}

// Incremented returns a copy of the snapshot with one launch added for the
// given identifier. Snapshots are immutable, so recording a launch swaps in
// the copy rather than mutating shared state.
func (u *Usage) Incremented(id string) *Usage {
	counts := make(map[string]int, len(u.counts)+1)
	for k, v := range u.counts {
		counts[k] = v
	}
	counts[id]++
	return NewUsage(counts)
}
