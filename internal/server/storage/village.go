package storage

import (
	"context"

	"github.com/maati-dev/maati/internal/models"
)

// VillageStorage defines the interface for village records.
type VillageStorage interface {
	// CreateVillage inserts a village record.
	CreateVillage(ctx context.Context, village *models.Village) error

	// GetVillage retrieves one village.
	// Returns ErrVillageNotFound if no record matches.
	GetVillage(ctx context.Context, villageID string) (*models.Village, error)

	// ListVillages returns village cards ordered by name.
	// stage > 0 filters by current stage.
	ListVillages(ctx context.Context, stage int) ([]models.VillageCard, error)

	// UpdateVillageStage sets the current relocation stage.
	// Returns ErrVillageNotFound if no record matches.
	UpdateVillageStage(ctx context.Context, villageID string, stage int) error

	// FamilyCount returns the per-option family aggregate for a village.
	FamilyCount(ctx context.Context, villageID string) (*models.FamilyCount, error)
}
