package cli

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// suggestLimit caps how many near-misses we surface after a failed search.
const suggestLimit = 3

// suggest returns up to suggestLimit candidates whose edit distance to the
// query is small relative to the query length. Ties break alphabetically so
// the output is stable.
func suggest(query string, candidates []string) []string {
	q := strings.ToLower(query)
	if q == "" {
		return nil
	}
	max := len(q)/2 + 1

	type scored struct {
		name string
		dist int
	}
	var hits []scored
	seen := make(map[string]bool)
	for _, c := range candidates {
		lc := strings.ToLower(c)
		if seen[lc] {
			continue
		}
		seen[lc] = true
		d := levenshtein.ComputeDistance(q, lc)
		if d > 0 && d <= max {
			hits = append(hits, scored{name: c, dist: d})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].name < hits[j].name
	})
	if len(hits) > suggestLimit {
		hits = hits[:suggestLimit]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}
