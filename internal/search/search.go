// Package search ranks indexed applications against a query string by
// combining normalized textual similarity with persisted usage weights.
package search

import (
	"math"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/lumen-desktop/lumen/internal/desktop"
	"github.com/lumen-desktop/lumen/internal/index"
	"github.com/lumen-desktop/lumen/internal/store"
)

// DefaultFloor is the similarity below which an entry is excluded from the
// results entirely instead of being ranked at the bottom.
const DefaultFloor = 0.3

// Result is one ranked entry.
type Result struct {
	Entry *desktop.Entry

	// Similarity is the normalized textual similarity in [0, 1].
	Similarity float64

	// Score is the final ranking value: similarity boosted by usage weight,
	// or the raw usage weight for an empty query.
	Score float64
}

// Scorer ranks index entries. It holds the string metrics so their setup
// cost is paid once, not per keystroke. A Scorer is safe for concurrent use:
// ranking touches only immutable inputs.
type Scorer struct {
	dice  *metrics.SorensenDice
	lev   *metrics.Levenshtein
	floor float64
}

// NewScorer creates a Scorer with the given similarity floor. A negative
// floor falls back to DefaultFloor; an explicit zero disables the floor so
// every visible entry is ranked.
func NewScorer(floor float64) *Scorer {
	if floor < 0 {
		floor = DefaultFloor
	}

	dice := metrics.NewSorensenDice()
	dice.CaseSensitive = false
	dice.NgramSize = 2

	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = false

	return &Scorer{dice: dice, lev: lev, floor: floor}
}

// Rank scores every visible entry of the index against the query and returns
// results ordered by descending score. Ties break on higher usage weight,
// then identifier order, so rankings are reproducible.
//
// An empty query returns all visible entries ordered purely by usage weight.
// Rank performs no I/O: the index and the usage snapshot are both in-memory.
func (sc *Scorer) Rank(query string, ix *index.Index, usage *store.Usage) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return rankByUsage(ix, usage)
	}

	lowered := strings.ToLower(query)
	uMax := usage.Max()

	results := make([]Result, 0, len(ix.Visible()))
	for _, e := range ix.Visible() {
		sim := sc.entrySimilarity(lowered, e)
		if sim < sc.floor {
			continue
		}
		weight := usage.Count(e.ID)
		results = append(results, Result{
			Entry:      e,
			Similarity: sim,
			Score:      sim * weightFactor(weight, uMax),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		wi, wj := usage.Count(results[i].Entry.ID), usage.Count(results[j].Entry.ID)
		if wi != wj {
			return wi > wj
		}
		return results[i].Entry.ID < results[j].Entry.ID
	})

	return results
}

// rankByUsage implements empty-query ordering: usage weight descending with
// identifier tie-breaks.
func rankByUsage(ix *index.Index, usage *store.Usage) []Result {
	results := make([]Result, 0, len(ix.Visible()))
	for _, e := range ix.Visible() {
		results = append(results, Result{
			Entry: e,
			Score: float64(usage.Count(e.ID)),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entry.ID < results[j].Entry.ID
	})

	return results
}

// entrySimilarity computes the normalized similarity between the lowercased
// query and an entry: the maximum over the display name and the identifier,
// with generic name and keywords contributing at reduced weight. Terminal
// and Settings entries get a small penalty, but an exact name match always
// scores a full 1.0.
func (sc *Scorer) entrySimilarity(query string, e *desktop.Entry) float64 {
	name := strings.ToLower(e.Name)
	if query == name || query == strings.ToLower(e.ID) {
		return 1.0
	}

	sim := sc.stringSimilarity(query, name)
	if s := sc.stringSimilarity(query, strings.ToLower(e.ID)); s > sim {
		sim = s
	}

	// Secondary fields rank an entry that matches on "Web Browser" or
	// "editor" but never above an equally good primary match.
	const secondaryWeight = 0.7
	if e.GenericName != "" {
		if s := secondaryWeight * sc.stringSimilarity(query, strings.ToLower(e.GenericName)); s > sim {
			sim = s
		}
	}
	for _, kw := range e.Keywords {
		if s := secondaryWeight * sc.stringSimilarity(query, strings.ToLower(kw)); s > sim {
			sim = s
		}
	}

	if e.Terminal || e.HasCategory("Settings") {
		sim *= 0.95
	}
	return sim
}

// stringSimilarity is the core [0, 1] metric: the best of bigram Dice,
// normalized Levenshtein, and a smooth substring bonus. Dropped or reordered
// characters degrade the value gradually rather than binarily.
func (sc *Scorer) stringSimilarity(query, candidate string) float64 {
	if candidate == "" {
		return 0
	}
	if query == candidate {
		return 1.0
	}

	best := strutil.Similarity(query, candidate, sc.lev)
	if s := strutil.Similarity(query, candidate, sc.dice); s > best {
		best = s
	}

	// Typing a prefix or infix of the name should feel close to exact and
	// grow smoothly toward 1.0 as more of the name is typed.
	if strings.Contains(candidate, query) {
		if s := 0.70 + 0.30*float64(len(query))/float64(len(candidate)); s > best {
			best = s
		}
	}

	return math.Min(best, 1.0)
}

// weightFactor grows sublinearly with the launch count, topping out at 1.5×
// for the most-used entry, so a handful of frequent launches cannot bury a
// clearly better textual match.
func weightFactor(count, max int) float64 {
	if count <= 0 || max <= 0 {
		return 1.0
	}
	return 1.0 + 0.5*math.Log1p(float64(count))/math.Log1p(float64(max))
}
