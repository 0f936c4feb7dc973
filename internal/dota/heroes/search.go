package heroes

import (
	"sort"
	"strings"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
)

// MinSearchScore is the similarity threshold (0-100) for search results.
const MinSearchScore = 40

// resolveScore is the minimum score Resolve accepts for a fuzzy name.
const resolveScore = 70

// SearchResult is a hero matched by name with its similarity score.
type SearchResult struct {
	Hero  recommend.Item `json:"hero"`
	Score int            `json:"score"`
}

// Search returns heroes whose names resemble query, best first. limit <= 0
// means unlimited.
func Search(catalog *recommend.Catalog, query string, limit int) []SearchResult {
	query = normalizeName(query)
	if query == "" {
		return nil
	}

	items := catalog.List()
	results := make([]SearchResult, 0, len(items))
	index := make(map[string]int, len(items))

	for i, item := range items {
		score := nameScore(query, normalizeName(item.Name))
		if item.ID == query {
			score = 100
		}
		if score >= MinSearchScore {
			results = append(results, SearchResult{Hero: item, Score: score})
			index[item.ID] = i
		}
	}

	// Score descending, then catalog order.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return index[results[i].Hero.ID] < index[results[j].Hero.ID]
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Resolve turns user input (a hero id or a name) into a catalog item.
// Exact ids and case-insensitive names win; otherwise the single best fuzzy
// match above the resolve threshold is used.
func Resolve(catalog *recommend.Catalog, token string) (recommend.Item, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return recommend.Item{}, false
	}

	if item, ok := catalog.Lookup(token); ok {
		return item, true
	}

	normalized := normalizeName(token)
	for _, item := range catalog.List() {
		if normalizeName(item.Name) == normalized {
			return item, true
		}
	}

	results := Search(catalog, token, 2)
	if len(results) == 0 || results[0].Score < resolveScore {
		return recommend.Item{}, false
	}
	if len(results) > 1 && results[1].Score == results[0].Score {
		return recommend.Item{}, false
	}
	return results[0].Hero, true
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// nameScore returns a similarity score between query and target (0-100)
// from exact, prefix, substring, and Levenshtein comparisons.
func nameScore(query, target string) int {
	if query == target {
		return 100
	}
	if len(query) == 0 || len(target) == 0 {
		return 0
	}

	if strings.HasPrefix(target, query) {
		return 85 + (len(query) * 14 / len(target))
	}

	if strings.Contains(target, query) {
		return 70 + (len(query) * 14 / len(target))
	}

	distance := levenshtein([]rune(query), []rune(target))
	return 100 - (distance * 100 / max(len([]rune(query)), len([]rune(target))))
}

// levenshtein is the single-character edit distance between a and b.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
