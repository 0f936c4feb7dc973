package recommend

import (
	"errors"
	"testing"
)

func patternsOf(seqs ...[]string) []Pattern {
	out := make([]Pattern, len(seqs))
	for i, s := range seqs {
		out[i] = Pattern{Items: s, Support: 1}
	}
	return out
}

func TestMatch_MajorityVote(t *testing.T) {
	patterns := patternsOf(
		[]string{"1", "2", "3"},
		[]string{"1", "2", "3"},
		[]string{"1", "2", "4"},
	)

	best, ok := Match([]string{"1", "2"}, patterns)
	if !ok {
		t.Fatal("Expected a match")
	}
	if best.ItemID != "3" {
		t.Errorf("Expected item 3, got %s", best.ItemID)
	}
	if best.Score != 2 {
		t.Errorf("Expected score 2, got %d", best.Score)
	}
}

func TestMatch_TieGoesToFirstSeen(t *testing.T) {
	patterns := patternsOf(
		[]string{"7", "9"},
		[]string{"7", "8"},
		[]string{"7", "8"},
		[]string{"7", "9"},
	)

	best, ok := Match([]string{"7"}, patterns)
	if !ok {
		t.Fatal("Expected a match")
	}
	if best.ItemID != "9" || best.Score != 2 {
		t.Errorf("Expected 9 with score 2, got %s with %d", best.ItemID, best.Score)
	}
}

func TestMatch_EmptySelectionMatchesEverything(t *testing.T) {
	patterns := patternsOf(
		[]string{"5"},
		[]string{"6", "1"},
		[]string{"6"},
		[]string{"5", "2"},
		[]string{"6", "3"},
	)

	best, ok := Match(nil, patterns)
	if !ok {
		t.Fatal("Expected a match for an empty selection")
	}
	if best.ItemID != "6" || best.Score != 3 {
		t.Errorf("Expected 6 with score 3, got %s with %d", best.ItemID, best.Score)
	}
}

func TestMatch_NoResult(t *testing.T) {
	tests := []struct {
		name      string
		selection []string
		patterns  []Pattern
	}{
		{"no patterns", []string{"1"}, nil},
		{"no prefix match", []string{"1"}, patternsOf([]string{"2", "1"})},
		{"pattern not longer than selection", []string{"1", "2"}, patternsOf([]string{"1", "2"})},
		{"reordered prefix", []string{"1", "2"}, patternsOf([]string{"2", "1", "3"})},
		{"empty selection and empty patterns", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, ok := Match(tt.selection, tt.patterns); ok {
				t.Errorf("Expected no result, got %+v", got)
			}
		})
	}
}

func TestTally_Order(t *testing.T) {
	patterns := patternsOf(
		[]string{"a", "x"},
		[]string{"a", "y"},
		[]string{"a", "y"},
		[]string{"b", "z"},
		[]string{"a", "w"},
	)

	got := Tally([]string{"a"}, patterns)
	want := []Candidate{{"y", 2}, {"x", 1}, {"w", 1}}

	if len(got) != len(want) {
		t.Fatalf("Expected %d candidates, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Candidate %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestNewPatternSet_RejectsEmptyPattern(t *testing.T) {
	_, err := NewPatternSet([]Pattern{{Items: []string{"1"}}, {Items: nil}})
	if !errors.Is(err, ErrEmptyPattern) {
		t.Fatalf("Expected ErrEmptyPattern, got %v", err)
	}

	_, err = NewPatternSet([]Pattern{{Items: []string{"1", ""}}})
	if err == nil {
		t.Fatal("Expected error for empty item id")
	}
}

func TestNewPatternSet_CopiesItems(t *testing.T) {
	items := []string{"1", "2"}
	set, err := NewPatternSet([]Pattern{{Items: items, Support: 4}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	items[0] = "changed"
	if set.Patterns()[0].Items[0] != "1" {
		t.Error("Pattern set should not share item storage with the caller")
	}
}

func TestPatternSet_Top(t *testing.T) {
	set, err := NewPatternSet([]Pattern{
		{Items: []string{"1"}, Support: 3},
		{Items: []string{"2"}, Support: 9},
		{Items: []string{"3"}, Support: 3},
		{Items: []string{"4"}, Support: 1},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	top := set.Top(3)
	if len(top) != 3 {
		t.Fatalf("Expected 3 patterns, got %d", len(top))
	}
	if top[0].Items[0] != "2" || top[1].Items[0] != "1" || top[2].Items[0] != "3" {
		t.Errorf("Unexpected order: %+v", top)
	}

	// The set itself keeps its original order.
	if set.Patterns()[0].Items[0] != "1" {
		t.Error("Top must not reorder the set")
	}
}

func TestPatternStore_Replace(t *testing.T) {
	store := NewPatternStore(nil)
	if store.Load() == nil || store.Load().Len() != 0 {
		t.Fatal("New store should hold an empty set")
	}

	first, _ := NewPatternSet(patternsOf([]string{"1", "2"}))
	store.Replace(first)

	snapshot := store.Load()
	second, _ := NewPatternSet(patternsOf([]string{"3", "4"}, []string{"3", "5"}))
	prev := store.Replace(second)

	if prev != first {
		t.Error("Replace should return the previous set")
	}
	if snapshot.Len() != 1 {
		t.Error("Previously loaded snapshot must not change after Replace")
	}
	if store.Load().Len() != 2 {
		t.Errorf("Expected 2 patterns after replace, got %d", store.Load().Len())
	}
}
