package recommend

import "math/rand/v2"

// RandSource picks an index in [0, n). n is always positive.
type RandSource interface {
	IntN(n int) int
}

// RandFunc adapts a function to RandSource.
type RandFunc func(n int) int

// IntN calls f(n).
func (f RandFunc) IntN(n int) int {
	return f(n)
}

// newCallRand returns a freshly seeded source used for a single call.
func newCallRand() RandSource {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Result is a recommendation ready for display.
type Result struct {
	ItemID   string `json:"hero_id"`
	ItemName string `json:"hero_name"`
	Source   string `json:"source"`
	Score    int    `json:"score"`
}

// Recommendation sources.
const (
	SourcePattern    = "pattern"
	SourceSimilarity = "similarity"
)

// SimilarCandidates returns every other catalog item sharing lastID's
// features, in catalog order.
func SimilarCandidates(lastID string, catalog *Catalog) []Item {
	last, ok := catalog.Lookup(lastID)
	if !ok {
		return nil
	}
	key := last.Features()

	var out []Item
	for _, item := range catalog.List() {
		if item.ID == lastID {
			continue
		}
		if item.Features() == key {
			out = append(out, item)
		}
	}
	return out
}

// Similar picks one item uniformly at random from the items sharing the
// last item's features. A nil rng uses a per-call random source.
func Similar(lastID string, catalog *Catalog, rng RandSource) (Result, bool) {
	candidates := SimilarCandidates(lastID, catalog)
	if len(candidates) == 0 {
		return Result{}, false
	}
	if rng == nil {
		rng = newCallRand()
	}

	pick := candidates[rng.IntN(len(candidates))]
	name := pick.Name
	if name == "" {
		name = pick.ID
	}
	return Result{
		ItemID:   pick.ID,
		ItemName: name,
		Source:   SourceSimilarity,
	}, true
}
