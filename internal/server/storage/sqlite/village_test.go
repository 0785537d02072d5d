package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maati-dev/maati/internal/models"
	"github.com/maati-dev/maati/internal/server/storage"
)

func TestVillageStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	village := &models.Village{
		VillageID:        "V001",
		Name:             "Rampur",
		Photo:            "rampur.jpg",
		Latitude:         24.59,
		Longitude:        81.33,
		AreaOfRelocation: 120.5,
		AreaDiverted:     86.2,
		CurrentStage:     3,
		TotalStages:      7,
		UpdatedAt:        testTime(),
	}
	require.NoError(t, s.CreateVillage(ctx, village))

	retrieved, err := s.GetVillage(ctx, "V001")
	require.NoError(t, err)
	assert.Equal(t, "Rampur", retrieved.Name)
	assert.Equal(t, 3, retrieved.CurrentStage)
	assert.InDelta(t, 120.5, retrieved.AreaOfRelocation, 0.001)

	_, err = s.GetVillage(ctx, "V404")
	assert.ErrorIs(t, err, storage.ErrVillageNotFound)
}

func TestVillageStorage_ListWithStageFilter(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NoError(t, s.CreateVillage(ctx, &models.Village{
		VillageID: "V001", Name: "Rampur", CurrentStage: 3, TotalStages: 7, UpdatedAt: testTime(),
	}))
	require.NoError(t, s.CreateVillage(ctx, &models.Village{
		VillageID: "V002", Name: "Basoli", CurrentStage: 5, TotalStages: 7, UpdatedAt: testTime(),
	}))
	require.NoError(t, s.CreateVillage(ctx, &models.Village{
		VillageID: "V003", Name: "Khairwara", CurrentStage: 3, TotalStages: 7, UpdatedAt: testTime(),
	}))

	all, err := s.ListVillages(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Ordered by name.
	assert.Equal(t, "Basoli", all[0].Name)
	assert.Equal(t, "Khairwara", all[1].Name)
	assert.Equal(t, "Rampur", all[2].Name)

	stage3, err := s.ListVillages(ctx, 3)
	require.NoError(t, err)
	require.Len(t, stage3, 2)
	for _, card := range stage3 {
		assert.Equal(t, 3, card.CurrStage)
	}
}

func TestVillageStorage_UpdateStage(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	villageID := seedVillage(t, ctx, s, "Rampur")

	require.NoError(t, s.UpdateVillageStage(ctx, villageID, 4))

	village, err := s.GetVillage(ctx, villageID)
	require.NoError(t, err)
	assert.Equal(t, 4, village.CurrentStage)

	assert.ErrorIs(t, s.UpdateVillageStage(ctx, "V404", 4), storage.ErrVillageNotFound)
}

func TestVillageStorage_FamilyCount(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	villageID := seedVillage(t, ctx, s, "Rampur")
	seedFamily(t, ctx, s, villageID, "Ravi Bhil", models.OptionHousing)
	seedFamily(t, ctx, s, villageID, "Mohan Lal", models.OptionHousing)
	seedFamily(t, ctx, s, villageID, "Sita Devi", models.OptionPackage)

	count, err := s.FamilyCount(ctx, villageID)
	require.NoError(t, err)
	assert.Equal(t, 3, count.TotalFamilies)
	assert.Equal(t, 2, count.FamiliesOption1)
	assert.Equal(t, 1, count.FamiliesOption2)

	empty, err := s.FamilyCount(ctx, "V404")
	require.NoError(t, err)
	assert.Zero(t, empty.TotalFamilies)
}
