package matchmaking

import (
	"sort"
	"strings"

	"github.com/mauv0809/league-engine/internal/ratings"
)

// matchCap is the most pairings any team may receive in one cycle.
const matchCap = 2

// pairState tracks per-team match counts and consumed pairs across both
// pairing passes.
type pairState struct {
	counts map[string]int
	used   map[string]bool
	pairs  [][2]string
}

func newPairState() *pairState {
	return &pairState{
		counts: make(map[string]int),
		used:   make(map[string]bool),
	}
}

func pairKey(a, b string) string {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func (ps *pairState) canMatch(a, b string) bool {
	if strings.EqualFold(a, b) {
		return false
	}
	return ps.counts[a] < matchCap && ps.counts[b] < matchCap && !ps.used[pairKey(a, b)]
}

func (ps *pairState) add(a, b string) {
	ps.counts[a]++
	ps.counts[b]++
	ps.used[pairKey(a, b)] = true
	ps.pairs = append(ps.pairs, [2]string{a, b})
}

func bucketIndex(rating int) int {
	for i, t := range ratings.Tiers {
		if rating >= t.Low && rating <= t.High {
			return i
		}
	}
	return len(ratings.Tiers) - 1
}

// sortSeeds orders seeds strongest band first, then rating descending, then
// name, so identical inputs always produce identical pairings.
func sortSeeds(seeds []seed) {
	sort.SliceStable(seeds, func(i, j int) bool {
		if seeds[i].bucket != seeds[j].bucket {
			return seeds[i].bucket < seeds[j].bucket
		}
		if seeds[i].rating != seeds[j].rating {
			return seeds[i].rating > seeds[j].rating
		}
		return seeds[i].name < seeds[j].name
	})
}

// pairCycle runs the primary in-band pass followed by the adjacent-band
// spillover pass. Returns the pairings in emission order and the teams that
// received no match at all.
func pairCycle(seeds []seed) ([][2]string, []string) {
	sortSeeds(seeds)

	buckets := make([][]seed, len(ratings.Tiers))
	for _, s := range seeds {
		buckets[s.bucket] = append(buckets[s.bucket], s)
	}

	ps := newPairState()

	// Primary pass: pair neighbours within each band, repeating until the
	// band yields nothing more so teams can reach the cap.
	for _, band := range buckets {
		for {
			added := false
			for i := 0; i < len(band); i++ {
				for j := i + 1; j < len(band); j++ {
					if ps.canMatch(band[i].name, band[j].name) {
						ps.add(band[i].name, band[j].name)
						added = true
						break
					}
				}
			}
			if !added {
				break
			}
		}
	}

	// Spillover pass: a team with no match yet tries the next-stronger band
	// first, then the next-weaker one.
	for bi, band := range buckets {
		for _, s := range band {
			if ps.counts[s.name] > 0 {
				continue
			}
			for _, adj := range []int{bi - 1, bi + 1} {
				if adj < 0 || adj >= len(buckets) {
					continue
				}
				matched := false
				for _, cand := range buckets[adj] {
					if ps.canMatch(s.name, cand.name) {
						ps.add(s.name, cand.name)
						matched = true
						break
					}
				}
				if matched {
					break
				}
			}
		}
	}

	var unpaired []string
	for _, s := range seeds {
		if ps.counts[s.name] == 0 {
			unpaired = append(unpaired, s.name)
		}
	}
	return ps.pairs, unpaired
}
