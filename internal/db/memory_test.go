package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailcast/internal/types"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	require.Len(t, catalog, 6)

	slugs := map[string]bool{}
	for _, a := range catalog {
		assert.False(t, slugs[a.Slug], "duplicate slug %s", a.Slug)
		slugs[a.Slug] = true
		assert.True(t, a.IsActive)
		assert.LessOrEqual(t, a.Profile.IdealTempMin, a.Profile.IdealTempMax, a.Slug)
	}
	assert.Greater(t, catalog[3].Profile.SwellWeight, 0.0, "surfing weighs swell")
	assert.Greater(t, catalog[4].Profile.GoldenHourWeight, 0.0, "photography weighs golden hour")
}

func TestMemoryStore_Activities(t *testing.T) {
	catalog := DefaultCatalog()
	// Reverse and deactivate one entry to check ordering and filtering.
	reversed := make([]types.ActivityType, 0, len(catalog))
	for i := len(catalog) - 1; i >= 0; i-- {
		reversed = append(reversed, catalog[i])
	}
	reversed[0].IsActive = false // climbing

	store := NewMemoryStore(reversed)
	ctx := context.Background()

	list, err := store.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Equal(t, "hiking", list[0].Slug)
	assert.Equal(t, "photography", list[4].Slug)

	a, err := store.GetBySlug(ctx, "cycling")
	require.NoError(t, err)
	assert.Equal(t, "Cycling", a.Name)

	_, err = store.GetBySlug(ctx, "climbing")
	assertCode(t, err, types.ErrCodeNotFoundActivity)
}

func TestMemoryStore_Users(t *testing.T) {
	store := NewMemoryStore(DefaultCatalog())
	require.NoError(t, SeedDemoUser(store))
	ctx := context.Background()

	u, err := store.GetByID(ctx, DemoUserID)
	require.NoError(t, err)
	_, _, ok := u.HomeLocation()
	assert.True(t, ok)

	list, err := store.ListForUser(ctx, DemoUserID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "surfing", list[0].Activity.Slug, "primary first")
	assert.Equal(t, 12.0, list[0].EffectiveProfile().IdealTempMin)
	assert.Equal(t, 30.0, list[0].EffectiveProfile().IdealTempMax)
	assert.Equal(t, "hiking", list[1].Activity.Slug)

	_, err = store.GetByID(ctx, "2f1b7a86-0ad6-4c55-8c0b-6b0f1e9a1d11")
	assertCode(t, err, types.ErrCodeNotFoundUser)

	_, err = store.ListForUser(ctx, "not-a-uuid")
	assertCode(t, err, types.ErrCodeValidationInvalidUserID)

	err = store.AddUserActivity(DemoUserID, "kiting", types.RangeOverrides{}, false)
	assertCode(t, err, types.ErrCodeNotFoundActivity)
}

func TestMemoryStore_ListForUser_Empty(t *testing.T) {
	store := NewMemoryStore(DefaultCatalog())
	list, err := store.ListForUser(context.Background(), DemoUserID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
