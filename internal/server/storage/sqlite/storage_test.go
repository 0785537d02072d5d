package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/maati-dev/maati/internal/models"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	t.Helper()
	ctx := context.Background()

	storage, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = storage.Close()
	}
	return storage, cleanup
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func testTime() time.Time {
	return time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
}

func seedVillage(t *testing.T, ctx context.Context, s *Storage, name string) string {
	t.Helper()
	id := uuid.New().String()
	err := s.CreateVillage(ctx, &models.Village{
		VillageID:    id,
		Name:         name,
		CurrentStage: 1,
		TotalStages:  7,
		UpdatedAt:    testTime(),
	})
	require.NoError(t, err)
	return id
}

func seedFamily(t *testing.T, ctx context.Context, s *Storage, villageID, mukhiyaName string, option int) string {
	t.Helper()
	id := uuid.New().String()
	err := s.CreateFamily(ctx, &models.Family{
		FamilyID:         id,
		VillageID:        villageID,
		MukhiyaName:      mukhiyaName,
		RelocationOption: option,
		CreatedAt:        testTime(),
		UpdatedAt:        testTime(),
	})
	require.NoError(t, err)
	return id
}

func seedUser(t *testing.T, ctx context.Context, s *Storage, userID string) {
	t.Helper()
	err := s.CreateUser(ctx, &models.User{
		UserID:    userID,
		Name:      "Asha Meena",
		Role:      "admin",
		Mobile:    "9876543210",
		CreatedAt: testTime(),
	})
	require.NoError(t, err)
}

func TestNewAndMigrations(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	// A freshly migrated database answers queries on every table.
	for _, table := range []string{
		"users", "password_history", "refresh_tokens", "villages", "families",
		"members", "housing_photos", "fund_transactions", "meetings",
		"buildings", "feedback", "facility_verifications",
		"field_verifications", "material_updates", "status_history",
		"activity_logs",
	} {
		var count int
		err := s.DB().QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&count)
		require.NoError(t, err, "table %s should exist", table)
		require.Zero(t, count)
	}
}
