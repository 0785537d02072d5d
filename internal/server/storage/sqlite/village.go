package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maati-dev/maati/internal/models"
	"github.com/maati-dev/maati/internal/server/storage"
)

// CreateVillage inserts a village record.
func (s *Storage) CreateVillage(ctx context.Context, village *models.Village) error {
	query := `
		INSERT INTO villages (id, name, photo, latitude, longitude, area_of_relocation, area_diverted, current_stage, total_stages, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		village.VillageID,
		village.Name,
		village.Photo,
		village.Latitude,
		village.Longitude,
		village.AreaOfRelocation,
		village.AreaDiverted,
		village.CurrentStage,
		village.TotalStages,
		village.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert village: %w", err)
	}

	return nil
}

// GetVillage retrieves one village.
func (s *Storage) GetVillage(ctx context.Context, villageID string) (*models.Village, error) {
	query := `
		SELECT id, name, photo, latitude, longitude, area_of_relocation, area_diverted, current_stage, total_stages, updated_at
		FROM villages
		WHERE id = ?
	`

	village := &models.Village{}
	err := s.db.QueryRowContext(ctx, query, villageID).Scan(
		&village.VillageID,
		&village.Name,
		&village.Photo,
		&village.Latitude,
		&village.Longitude,
		&village.AreaOfRelocation,
		&village.AreaDiverted,
		&village.CurrentStage,
		&village.TotalStages,
		&village.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrVillageNotFound
		}
		return nil, fmt.Errorf("failed to get village: %w", err)
	}

	return village, nil
}

// ListVillages returns village cards ordered by name.
func (s *Storage) ListVillages(ctx context.Context, stage int) ([]models.VillageCard, error) {
	query := `
		SELECT id, name, current_stage, updated_at
		FROM villages
	`
	args := []any{}
	if stage > 0 {
		query += ` WHERE current_stage = ?`
		args = append(args, stage)
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query villages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var cards []models.VillageCard
	for rows.Next() {
		var card models.VillageCard
		if err := rows.Scan(&card.VillageID, &card.Name, &card.CurrStage, &card.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan village card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return cards, nil
}

// UpdateVillageStage sets the current relocation stage.
func (s *Storage) UpdateVillageStage(ctx context.Context, villageID string, stage int) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE villages SET current_stage = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		stage, villageID,
	)
	if err != nil {
		return fmt.Errorf("failed to update village stage: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrVillageNotFound
	}
	return nil
}

// FamilyCount returns the per-option family aggregate for a village.
func (s *Storage) FamilyCount(ctx context.Context, villageID string) (*models.FamilyCount, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN relocation_option = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN relocation_option = ? THEN 1 ELSE 0 END), 0)
		FROM families
		WHERE village_id = ?
	`

	count := &models.FamilyCount{VillageID: villageID}
	err := s.db.QueryRowContext(ctx, query, models.OptionHousing, models.OptionPackage, villageID).Scan(
		&count.TotalFamilies,
		&count.FamiliesOption1,
		&count.FamiliesOption2,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count families: %w", err)
	}

	return count, nil
}
