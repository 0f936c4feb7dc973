package recommend

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"
)

// ErrEmptyPattern is returned when a pattern without items is ingested.
var ErrEmptyPattern = errors.New("pattern has no items")

// Pattern is a frequent pick subsequence with the miner's support value.
type Pattern struct {
	Items   []string `json:"items"`
	Support int      `json:"support"`
}

// Len returns the number of items in the pattern.
func (p Pattern) Len() int {
	return len(p.Items)
}

// PatternSet is an immutable, ordered collection of patterns produced by a
// single mining run (or import).
type PatternSet struct {
	// ID identifies the mining run that produced the set.
	ID string `json:"id"`

	// Source describes where the set came from ("builtin", "spmf", "file", "database").
	Source string `json:"source"`

	// CreatedAt is when the set was produced.
	CreatedAt time.Time `json:"created_at"`

	patterns []Pattern
}

// NewPatternSet validates and copies patterns into a new set.
// Patterns with no items, or with an empty item id, are rejected.
func NewPatternSet(patterns []Pattern) (*PatternSet, error) {
	copied := make([]Pattern, 0, len(patterns))
	for i, p := range patterns {
		if len(p.Items) == 0 {
			return nil, fmt.Errorf("pattern %d: %w", i, ErrEmptyPattern)
		}
		items := make([]string, len(p.Items))
		for j, id := range p.Items {
			if id == "" {
				return nil, fmt.Errorf("pattern %d: item %d has an empty id", i, j)
			}
			items[j] = id
		}
		copied = append(copied, Pattern{Items: items, Support: p.Support})
	}

	return &PatternSet{
		CreatedAt: time.Now(),
		patterns:  copied,
	}, nil
}

// EmptyPatternSet returns a set with no patterns.
func EmptyPatternSet() *PatternSet {
	return &PatternSet{CreatedAt: time.Now()}
}

// Patterns returns the patterns in their stable order. Callers must not
// modify the returned slice.
func (s *PatternSet) Patterns() []Pattern {
	if s == nil {
		return nil
	}
	return s.patterns
}

// Len returns the number of patterns.
func (s *PatternSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.patterns)
}

// SamePatterns reports whether the set holds exactly patterns, in order.
func (s *PatternSet) SamePatterns(patterns []Pattern) bool {
	current := s.Patterns()
	if len(current) != len(patterns) {
		return false
	}
	for i := range current {
		if current[i].Support != patterns[i].Support || !slices.Equal(current[i].Items, patterns[i].Items) {
			return false
		}
	}
	return true
}

// Top returns up to n patterns with the highest support, ties kept in set order.
func (s *PatternSet) Top(n int) []Pattern {
	out := make([]Pattern, len(s.Patterns()))
	copy(out, s.Patterns())
	sortPatternsBySupport(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// PatternStore holds the pattern set for a recommendation session. Refreshes
// replace the whole set; readers always see a complete snapshot.
type PatternStore struct {
	current atomic.Pointer[PatternSet]
}

// NewPatternStore creates a store seeded with the given set (nil means empty).
func NewPatternStore(initial *PatternSet) *PatternStore {
	s := &PatternStore{}
	s.Replace(initial)
	return s
}

// Load returns the current snapshot. Never nil.
func (s *PatternStore) Load() *PatternSet {
	return s.current.Load()
}

// Replace swaps in a new set and returns the previous one.
func (s *PatternStore) Replace(set *PatternSet) *PatternSet {
	if set == nil {
		set = EmptyPatternSet()
	}
	return s.current.Swap(set)
}
