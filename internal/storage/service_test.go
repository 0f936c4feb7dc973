package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/Dota-Draft-Companion/internal/storage/models"
)

func TestService_Repositories(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, service.Heroes().UpsertAll(ctx, []*models.Hero{{ID: "1", Name: "Anti-Mage"}}))
	require.NoError(t, service.Matches().SaveAll(ctx, []*models.MatchDraft{{MatchID: 1, Picks: []string{"1", "2"}}}))
	require.NoError(t, service.Patterns().Save(ctx, &models.PatternSet{
		ID:       "run",
		Source:   "builtin",
		Patterns: []models.Pattern{{Items: []string{"1", "2"}, Support: 1}},
	}))

	heroes, err := service.Heroes().List(ctx)
	require.NoError(t, err)
	assert.Len(t, heroes, 1)

	count, err := service.Matches().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	latest, err := service.Patterns().GetLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "run", latest.ID)
}
