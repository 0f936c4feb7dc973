package repository

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/storage/models"
	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory database with the embedded up migrations applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)&_time_format=sqlite")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	files, err := filepath.Glob(filepath.Join("..", "migrations", "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	sort.Strings(files)

	for _, f := range files {
		schema, err := os.ReadFile(f)
		require.NoError(t, err)
		_, err = db.Exec(string(schema))
		require.NoError(t, err, "applying %s", f)
	}

	return db
}

func TestHeroRepository_UpsertAndList(t *testing.T) {
	repo := NewHeroRepository(setupTestDB(t))
	ctx := context.Background()

	err := repo.UpsertAll(ctx, []*models.Hero{
		{ID: "2", Name: "Axe", AttackType: "Melee", PrimaryAttr: "Strength", Role: "Initiator"},
		{ID: "1", Name: "Anti-Mage", AttackType: "Melee", PrimaryAttr: "Agility", Role: "Carry"},
	})
	require.NoError(t, err)

	heroes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, heroes, 2)
	assert.Equal(t, "Anti-Mage", heroes[0].Name)
	assert.Equal(t, "Axe", heroes[1].Name)
	assert.False(t, heroes[0].UpdatedAt.IsZero())

	// Second upsert updates in place.
	err = repo.UpsertAll(ctx, []*models.Hero{
		{ID: "2", Name: "Axe", AttackType: "Melee", PrimaryAttr: "Strength", Role: "Durable"},
	})
	require.NoError(t, err)

	axe, err := repo.GetByID(ctx, "2")
	require.NoError(t, err)
	require.NotNil(t, axe)
	assert.Equal(t, "Durable", axe.Role)

	heroes, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, heroes, 2)
}

func TestHeroRepository_GetByIDMissing(t *testing.T) {
	repo := NewHeroRepository(setupTestDB(t))

	hero, err := repo.GetByID(context.Background(), "999")
	require.NoError(t, err)
	assert.Nil(t, hero)
}

func TestHeroRepository_LastUpdated(t *testing.T) {
	repo := NewHeroRepository(setupTestDB(t))
	ctx := context.Background()

	latest, err := repo.LastUpdated(ctx)
	require.NoError(t, err)
	assert.True(t, latest.IsZero())

	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertAll(ctx, []*models.Hero{
		{ID: "1", Name: "Anti-Mage", UpdatedAt: older},
		{ID: "2", Name: "Axe", UpdatedAt: newer},
	}))

	latest, err = repo.LastUpdated(ctx)
	require.NoError(t, err)
	assert.True(t, latest.Equal(newer), "expected %v, got %v", newer, latest)
}

func TestMatchRepository_SaveAndGetRecent(t *testing.T) {
	repo := NewMatchRepository(setupTestDB(t))
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	err := repo.SaveAll(ctx, []*models.MatchDraft{
		{MatchID: 100, Picks: []string{"1", "2", "3"}, FetchedAt: base},
		{MatchID: 101, Picks: []string{"4", "5"}, StartTime: base.Add(-time.Hour), FetchedAt: base.Add(time.Minute)},
	})
	require.NoError(t, err)

	drafts, err := repo.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, int64(101), drafts[0].MatchID)
	assert.Equal(t, []string{"4", "5"}, drafts[0].Picks)
	assert.False(t, drafts[0].StartTime.IsZero())
	assert.Equal(t, []string{"1", "2", "3"}, drafts[1].Picks)
	assert.True(t, drafts[1].StartTime.IsZero())

	limited, err := repo.GetRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMatchRepository_ReplaceAndExists(t *testing.T) {
	repo := NewMatchRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.SaveAll(ctx, []*models.MatchDraft{{MatchID: 7, Picks: []string{"1"}}}))
	require.NoError(t, repo.SaveAll(ctx, []*models.MatchDraft{{MatchID: 7, Picks: []string{"1", "2"}}}))

	exists, err := repo.Exists(ctx, 7)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, 8)
	require.NoError(t, err)
	assert.False(t, exists)

	drafts, err := repo.GetRecent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, []string{"1", "2"}, drafts[0].Picks)
}

func TestPatternRepository_SaveAndGetLatest(t *testing.T) {
	repo := NewPatternRepository(setupTestDB(t))
	ctx := context.Background()

	latest, err := repo.GetLatest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	first := &models.PatternSet{
		ID:         "run-1",
		Source:     "builtin",
		MinSupport: 0.5,
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Patterns:   []models.Pattern{{Items: []string{"1"}, Support: 4}},
	}
	second := &models.PatternSet{
		ID:            "run-2",
		Source:        "spmf",
		MinSupport:    0.25,
		SequenceCount: 8,
		CreatedAt:     time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Patterns: []models.Pattern{
			{Items: []string{"1", "2", "3"}, Support: 5},
			{Items: []string{"1", "2", "4"}, Support: 3},
		},
	}
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))
	assert.Equal(t, 2, second.PatternCount)

	latest, err = repo.GetLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "run-2", latest.ID)
	assert.Equal(t, "spmf", latest.Source)
	assert.Equal(t, 8, latest.SequenceCount)
	assert.Equal(t, second.Patterns, latest.Patterns)

	byID, err := repo.GetByID(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, []models.Pattern{{Items: []string{"1"}, Support: 4}}, byID.Patterns)

	missing, err := repo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPatternRepository_EmptySet(t *testing.T) {
	repo := NewPatternRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.PatternSet{ID: "empty", Source: "builtin"}))

	latest, err := repo.GetLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 0, latest.PatternCount)
	assert.Empty(t, latest.Patterns)
}

func TestPatternRepository_SaveRequiresID(t *testing.T) {
	repo := NewPatternRepository(setupTestDB(t))

	assert.Error(t, repo.Save(context.Background(), &models.PatternSet{}))
	assert.Error(t, repo.Save(context.Background(), nil))
}

func TestPatternRepository_ListAndPrune(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPatternRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Save(ctx, &models.PatternSet{
			ID:        id,
			Source:    "builtin",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Patterns:  []models.Pattern{{Items: []string{id}, Support: 1}},
		}))
	}

	sets, err := repo.ListSets(ctx, 0)
	require.NoError(t, err)
	require.Len(t, sets, 3)
	assert.Equal(t, "c", sets[0].ID)
	assert.Nil(t, sets[0].Patterns)

	deleted, err := repo.Prune(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var patternRows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM patterns`).Scan(&patternRows))
	assert.Equal(t, 1, patternRows, "patterns of pruned sets should cascade")
}
