// Package models contains the persisted shapes of heroes, drafts, and pattern sets.
package models

import "time"

// Hero is a cached hero catalog entry.
type Hero struct {
	ID          string
	Name        string
	AttackType  string
	PrimaryAttr string
	Role        string
	UpdatedAt   time.Time
}

// MatchDraft is the ordered pick sequence of one fetched match.
type MatchDraft struct {
	MatchID   int64
	StartTime time.Time
	Picks     []string
	FetchedAt time.Time
}

// Pattern is one stored frequent pick sequence.
type Pattern struct {
	Items   []string
	Support int
}

// PatternSet is one mining run's output.
type PatternSet struct {
	ID            string
	Source        string
	MinSupport    float64
	SequenceCount int
	PatternCount  int
	CreatedAt     time.Time

	// Patterns is empty when only the set summary was loaded.
	Patterns []Pattern
}
