package recommend

import "sort"

// Candidate is a next-item proposal with its vote count.
type Candidate struct {
	ItemID string `json:"hero_id"`
	Score  int    `json:"score"`
}

// Tally counts, for every pattern longer than the selection whose prefix
// equals the selection, one vote for the item right after that prefix.
// Candidates are returned by score descending; equal scores keep the order
// in which the candidate was first proposed.
func Tally(selection []string, patterns []Pattern) []Candidate {
	n := len(selection)
	scores := make(map[string]int)
	var order []string

	for _, p := range patterns {
		if len(p.Items) <= n || !hasPrefix(p.Items, selection) {
			continue
		}
		next := p.Items[n]
		if _, seen := scores[next]; !seen {
			order = append(order, next)
		}
		scores[next]++
	}

	candidates := make([]Candidate, len(order))
	for i, id := range order {
		candidates[i] = Candidate{ItemID: id, Score: scores[id]}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// Match returns the best next item for the selection. The winner is the
// candidate with the most votes; ties go to the candidate first proposed in
// pattern order.
func Match(selection []string, patterns []Pattern) (Candidate, bool) {
	candidates := Tally(selection, patterns)
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	return candidates[0], true
}

func hasPrefix(items, prefix []string) bool {
	if len(prefix) > len(items) {
		return false
	}
	for i := range prefix {
		if items[i] != prefix[i] {
			return false
		}
	}
	return true
}

// sortPatternsBySupport orders patterns by support descending, stable.
func sortPatternsBySupport(patterns []Pattern) {
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Support > patterns[j].Support
	})
}
