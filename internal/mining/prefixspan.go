package mining

import (
	"context"
	"slices"
	"sort"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/recommend"
)

// PrefixSpan is an in-process PrefixSpan miner for sequences of single items.
type PrefixSpan struct {
	// MaxLength caps pattern length (0 = unlimited).
	MaxLength int
}

// Name implements Miner.
func (m *PrefixSpan) Name() string { return MinerBuiltin }

// projection is a suffix of one sequence: sequence index and start offset.
type projection struct {
	seq   int
	start int
}

// Mine returns every pattern contained, as a gapped subsequence, in at least
// ceil(minSupport*len(sequences)) sequences. Support is the number of
// sequences containing the pattern. Patterns are ordered by length, then
// support descending, then items.
func (m *PrefixSpan) Mine(ctx context.Context, sequences [][]string, minSupport float64) ([]recommend.Pattern, error) {
	minCount, err := MinCount(minSupport, len(sequences))
	if err != nil {
		return nil, err
	}
	if len(sequences) == 0 {
		return nil, nil
	}

	root := make([]projection, 0, len(sequences))
	for i, s := range sequences {
		if len(s) > 0 {
			root = append(root, projection{seq: i})
		}
	}

	var patterns []recommend.Pattern
	var grow func(prefix []string, db []projection) error
	grow = func(prefix []string, db []projection) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.MaxLength > 0 && len(prefix) >= m.MaxLength {
			return nil
		}

		for _, item := range frequentItems(sequences, db, minCount) {
			next := project(sequences, db, item.id)

			pattern := make([]string, len(prefix)+1)
			copy(pattern, prefix)
			pattern[len(prefix)] = item.id
			patterns = append(patterns, recommend.Pattern{Items: pattern, Support: item.count})

			if err := grow(pattern, next); err != nil {
				return err
			}
		}
		return nil
	}

	if err := grow(nil, root); err != nil {
		return nil, err
	}

	SortPatterns(patterns)
	return patterns, nil
}

type itemCount struct {
	id    string
	count int
}

// frequentItems counts, per item, the projected sequences whose suffix
// contains it, and returns those reaching minCount.
func frequentItems(sequences [][]string, db []projection, minCount int) []itemCount {
	counts := make(map[string]int)
	seen := make(map[string]struct{})
	for _, p := range db {
		clear(seen)
		for _, item := range sequences[p.seq][p.start:] {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			counts[item]++
		}
	}

	frequent := make([]itemCount, 0, len(counts))
	for id, c := range counts {
		if c >= minCount {
			frequent = append(frequent, itemCount{id: id, count: c})
		}
	}
	sort.Slice(frequent, func(i, j int) bool { return frequent[i].id < frequent[j].id })
	return frequent
}

// project keeps, for each projected sequence containing item, the suffix
// after its first occurrence.
func project(sequences [][]string, db []projection, item string) []projection {
	next := make([]projection, 0, len(db))
	for _, p := range db {
		suffix := sequences[p.seq][p.start:]
		if i := slices.Index(suffix, item); i >= 0 {
			next = append(next, projection{seq: p.seq, start: p.start + i + 1})
		}
	}
	return next
}

// SortPatterns orders patterns by length ascending, support descending, then
// item-wise.
func SortPatterns(patterns []recommend.Pattern) {
	sort.SliceStable(patterns, func(i, j int) bool {
		a, b := patterns[i], patterns[j]
		if len(a.Items) != len(b.Items) {
			return len(a.Items) < len(b.Items)
		}
		if a.Support != b.Support {
			return a.Support > b.Support
		}
		return slices.Compare(a.Items, b.Items) < 0
	})
}
