package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"serwer-obrazow/internal/images"
	"serwer-obrazow/internal/models"
)

func TestCreateTier(t *testing.T) {
	created, err := testStore.CreateTier(context.Background(), images.CreateTierParams{
		Name: "tier_create_test",
		ThumbnailSizes: []models.ThumbnailSize{
			{Width: 128, Height: 128},
			{Width: 640, Height: 480},
		},
		IncludeOriginal:    true,
		AllowExpiringLinks: true,
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	require.NotZero(t, created.ID)
	require.Equal(t, "tier_create_test", created.Name)
	require.True(t, created.IncludeOriginal)
	require.True(t, created.AllowExpiringLinks)

	// Rozmiar miniatur przechodzi przez jsonb bez strat
	require.Len(t, created.ThumbnailSizes, 2)
	require.Equal(t, models.ThumbnailSize{Width: 128, Height: 128}, created.ThumbnailSizes[0])
	require.Equal(t, models.ThumbnailSize{Width: 640, Height: 480}, created.ThumbnailSizes[1])
}

func TestCreateTier_DuplicateName(t *testing.T) {
	params := images.CreateTierParams{
		Name:           "tier_duplicate_test",
		ThumbnailSizes: []models.ThumbnailSize{{Width: 100, Height: 100}},
	}

	_, err := testStore.CreateTier(context.Background(), params)
	require.NoError(t, err)

	_, err = testStore.CreateTier(context.Background(), params)
	require.ErrorIs(t, err, images.ErrDuplicateTierName)
}

func TestListTiers_IncludesSeeds(t *testing.T) {
	tiers, err := testStore.ListTiers(context.Background())
	require.NoError(t, err)

	names := make(map[string]models.AccountTier)
	for _, tier := range tiers {
		names[tier.Name] = tier
	}

	// Wbudowane plany z init.sql
	basic, ok := names["Basic"]
	require.True(t, ok)
	require.Equal(t, []models.ThumbnailSize{{Width: 200, Height: 200}}, basic.ThumbnailSizes)
	require.False(t, basic.IncludeOriginal)
	require.False(t, basic.AllowExpiringLinks)

	enterprise, ok := names["Enterprise"]
	require.True(t, ok)
	require.Len(t, enterprise.ThumbnailSizes, 2)
	require.True(t, enterprise.IncludeOriginal)
	require.False(t, enterprise.AllowExpiringLinks)

	premium, ok := names["Premium"]
	require.True(t, ok)
	require.Len(t, premium.ThumbnailSizes, 2)
	require.True(t, premium.IncludeOriginal)
	require.True(t, premium.AllowExpiringLinks)
}

func TestGetTierForUser(t *testing.T) {
	userID := createTestUser(t, "user_tier_binding", false)

	// Bez przypisania zwraca nil bez błędu
	tier, err := testStore.GetTierForUser(context.Background(), userID)
	require.NoError(t, err)
	require.Nil(t, tier)

	created, err := testStore.CreateTier(context.Background(), images.CreateTierParams{
		Name:           "tier_for_user_test",
		ThumbnailSizes: []models.ThumbnailSize{{Width: 50, Height: 50}},
	})
	require.NoError(t, err)

	err = testStore.SetUserTier(context.Background(), userID, created.ID)
	require.NoError(t, err)

	tier, err = testStore.GetTierForUser(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, tier)
	require.Equal(t, created.ID, tier.ID)
	require.Equal(t, "tier_for_user_test", tier.Name)
}

func TestSetUserTier_ReplacesBinding(t *testing.T) {
	userID := createTestUser(t, "user_tier_rebinding", false)

	first, err := testStore.CreateTier(context.Background(), images.CreateTierParams{
		Name:           "tier_rebind_first",
		ThumbnailSizes: []models.ThumbnailSize{{Width: 10, Height: 10}},
	})
	require.NoError(t, err)
	second, err := testStore.CreateTier(context.Background(), images.CreateTierParams{
		Name:           "tier_rebind_second",
		ThumbnailSizes: []models.ThumbnailSize{{Width: 20, Height: 20}},
	})
	require.NoError(t, err)

	require.NoError(t, testStore.SetUserTier(context.Background(), userID, first.ID))
	require.NoError(t, testStore.SetUserTier(context.Background(), userID, second.ID))

	tier, err := testStore.GetTierForUser(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, tier)
	require.Equal(t, second.ID, tier.ID)
}
