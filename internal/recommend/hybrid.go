package recommend

// NoResultMessage is shown to users when neither strategy produced a pick.
const NoResultMessage = "Insufficient data for a confident suggestion."

// Recommend applies the hybrid policy: the pattern matcher wins whenever it
// has a candidate; otherwise the last selected item is used for the
// similarity fallback. An empty selection with no pattern match yields no
// result.
func Recommend(selection []string, patterns []Pattern, catalog *Catalog, rng RandSource) (Result, bool) {
	if best, ok := Match(selection, patterns); ok {
		return Result{
			ItemID:   best.ItemID,
			ItemName: catalog.DisplayName(best.ItemID),
			Source:   SourcePattern,
			Score:    best.Score,
		}, true
	}

	if len(selection) == 0 {
		return Result{}, false
	}
	return Similar(selection[len(selection)-1], catalog, rng)
}

// Recommender binds the hybrid policy to live pattern and catalog stores.
type Recommender struct {
	patterns *PatternStore
	catalog  *CatalogStore
	rng      RandSource
}

// NewRecommender creates a recommender over the given stores. rng may be nil.
func NewRecommender(patterns *PatternStore, catalog *CatalogStore, rng RandSource) *Recommender {
	if patterns == nil {
		patterns = NewPatternStore(nil)
	}
	if catalog == nil {
		catalog = NewCatalogStore(nil)
	}
	return &Recommender{
		patterns: patterns,
		catalog:  catalog,
		rng:      rng,
	}
}

// Recommend reads one snapshot of each store and applies the hybrid policy.
func (r *Recommender) Recommend(selection []string) (Result, bool) {
	return Recommend(selection, r.patterns.Load().Patterns(), r.catalog.Load(), r.rng)
}

// Tally returns the pattern vote table for the selection against the current snapshot.
func (r *Recommender) Tally(selection []string) []Candidate {
	return Tally(selection, r.patterns.Load().Patterns())
}

// Patterns returns the pattern store.
func (r *Recommender) Patterns() *PatternStore {
	return r.patterns
}

// Catalog returns the catalog store.
func (r *Recommender) Catalog() *CatalogStore {
	return r.catalog
}
