package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/maati-dev/maati/internal/models"
	"github.com/maati-dev/maati/internal/server/storage"
	"github.com/maati-dev/maati/pkg/api"
)

// status_history record kinds
const (
	kindFacility = "facility"
	kindField    = "field"
	kindMaterial = "material"
)

// CreateFacilityVerification inserts a facility check.
func (s *Storage) CreateFacilityVerification(ctx context.Context, v *models.FacilityVerification) error {
	query := `
		INSERT INTO facility_verifications (id, village_id, facility_id, status, verified_by, remarks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		v.VerificationID,
		v.VillageID,
		v.FacilityID,
		v.Status,
		v.VerifiedBy,
		v.Remarks,
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert facility verification: %w", err)
	}

	return s.appendStatus(ctx, kindFacility, v.VerificationID, models.StatusChange{
		Status:    v.Status,
		ChangedBy: v.VerifiedBy,
		Remarks:   v.Remarks,
		ChangedAt: v.CreatedAt,
	})
}

// ListFacilityVerifications returns facility checks for a village.
func (s *Storage) ListFacilityVerifications(ctx context.Context, villageID string) ([]models.FacilityVerification, error) {
	query := `
		SELECT id, village_id, facility_id, status, verified_by, remarks, created_at, updated_at
		FROM facility_verifications
		WHERE village_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, villageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query facility verifications: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var verifications []models.FacilityVerification
	for rows.Next() {
		var v models.FacilityVerification
		if err := rows.Scan(
			&v.VerificationID,
			&v.VillageID,
			&v.FacilityID,
			&v.Status,
			&v.VerifiedBy,
			&v.Remarks,
			&v.CreatedAt,
			&v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan facility verification: %w", err)
		}
		verifications = append(verifications, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return verifications, nil
}

// UpdateFacilityStatus moves a facility check to a new status.
func (s *Storage) UpdateFacilityStatus(ctx context.Context, verificationID string, change models.StatusChange) error {
	return s.updateStatus(ctx, "facility_verifications", kindFacility, verificationID, change, storage.ErrVerificationNotFound)
}

// CreateFieldVerification inserts a plot check.
func (s *Storage) CreateFieldVerification(ctx context.Context, v *models.FieldVerification) error {
	query := `
		INSERT INTO field_verifications (id, village_id, plot_id, status, verified_by, remarks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		v.VerificationID,
		v.VillageID,
		v.PlotID,
		v.Status,
		v.VerifiedBy,
		v.Remarks,
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert field verification: %w", err)
	}

	return s.appendStatus(ctx, kindField, v.VerificationID, models.StatusChange{
		Status:    v.Status,
		ChangedBy: v.VerifiedBy,
		Remarks:   v.Remarks,
		ChangedAt: v.CreatedAt,
	})
}

// ListFieldVerifications returns plot checks for a village.
func (s *Storage) ListFieldVerifications(ctx context.Context, villageID string) ([]models.FieldVerification, error) {
	query := `
		SELECT id, village_id, plot_id, status, verified_by, remarks, created_at, updated_at
		FROM field_verifications
		WHERE village_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, villageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query field verifications: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var verifications []models.FieldVerification
	for rows.Next() {
		var v models.FieldVerification
		if err := rows.Scan(
			&v.VerificationID,
			&v.VillageID,
			&v.PlotID,
			&v.Status,
			&v.VerifiedBy,
			&v.Remarks,
			&v.CreatedAt,
			&v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan field verification: %w", err)
		}
		verifications = append(verifications, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return verifications, nil
}

// UpdateFieldStatus moves a plot check to a new status.
func (s *Storage) UpdateFieldStatus(ctx context.Context, verificationID string, change models.StatusChange) error {
	return s.updateStatus(ctx, "field_verifications", kindField, verificationID, change, storage.ErrVerificationNotFound)
}

// CreateMaterialUpdate inserts a material movement record and seeds its
// status history.
func (s *Storage) CreateMaterialUpdate(ctx context.Context, update *models.MaterialUpdate) error {
	query := `
		INSERT INTO material_updates (id, village_id, material_id, unit, quantity, status, updated_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		update.UpdateID,
		update.VillageID,
		update.MaterialID,
		update.Unit,
		update.Quantity,
		update.Status,
		update.UpdatedBy,
		update.CreatedAt,
		update.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert material update: %w", err)
	}

	return s.appendStatus(ctx, kindMaterial, update.UpdateID, models.StatusChange{
		Status:    update.Status,
		ChangedBy: update.UpdatedBy,
		ChangedAt: update.CreatedAt,
	})
}

// ListMaterialUpdates returns material records for a village.
func (s *Storage) ListMaterialUpdates(ctx context.Context, villageID string) ([]models.MaterialUpdate, error) {
	query := `
		SELECT id, village_id, material_id, unit, quantity, status, updated_by, created_at, updated_at
		FROM material_updates
		WHERE village_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, villageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query material updates: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var updates []models.MaterialUpdate
	for rows.Next() {
		var update models.MaterialUpdate
		if err := rows.Scan(
			&update.UpdateID,
			&update.VillageID,
			&update.MaterialID,
			&update.Unit,
			&update.Quantity,
			&update.Status,
			&update.UpdatedBy,
			&update.CreatedAt,
			&update.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan material update: %w", err)
		}
		updates = append(updates, update)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return updates, nil
}

// UpdateMaterialStatus moves a material record to a new status.
func (s *Storage) UpdateMaterialStatus(ctx context.Context, updateID string, change models.StatusChange) error {
	return s.updateStatus(ctx, "material_updates", kindMaterial, updateID, change, storage.ErrMaterialUpdateNotFound)
}

// MaterialStatusHistory returns the status trail, oldest first.
func (s *Storage) MaterialStatusHistory(ctx context.Context, updateID string) ([]models.StatusChange, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM material_updates WHERE id = ?`, updateID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check material update: %w", err)
	}
	if exists == 0 {
		return nil, storage.ErrMaterialUpdateNotFound
	}

	return s.statusHistory(ctx, kindMaterial, updateID)
}

// updateStatus moves one record to a new status and appends the change to
// its history inside a single transaction.
func (s *Storage) updateStatus(ctx context.Context, table, kind, recordID string, change models.StatusChange, notFound error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// table comes from a fixed internal set, never from input.
	result, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET status = ?, updated_at = ? WHERE id = ?`, table),
		change.Status, change.ChangedAt, recordID,
	)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO status_history (record_id, record_kind, status, changed_by, remarks, changed_at) VALUES (?, ?, ?, ?, ?, ?)`,
		recordID, kind, change.Status, change.ChangedBy, change.Remarks, change.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append status history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status change: %w", err)
	}
	return nil
}

func (s *Storage) appendStatus(ctx context.Context, kind, recordID string, change models.StatusChange) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO status_history (record_id, record_kind, status, changed_by, remarks, changed_at) VALUES (?, ?, ?, ?, ?, ?)`,
		recordID, kind, change.Status, change.ChangedBy, change.Remarks, change.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append status history: %w", err)
	}
	return nil
}

func (s *Storage) statusHistory(ctx context.Context, kind, recordID string) ([]models.StatusChange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, changed_by, remarks, changed_at
		FROM status_history
		WHERE record_kind = ? AND record_id = ?
		ORDER BY changed_at
	`, kind, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var history []models.StatusChange
	for rows.Next() {
		var change models.StatusChange
		if err := rows.Scan(&change.Status, &change.ChangedBy, &change.Remarks, &change.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		history = append(history, change)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return history, nil
}

// AppendLog inserts an activity log entry.
func (s *Storage) AppendLog(ctx context.Context, entry *models.LogEntry) error {
	query := `
		INSERT INTO activity_logs (id, type, action, village_id, user_id, related_id, message, update_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.LogID,
		entry.Type,
		entry.Action,
		entry.VillageID,
		entry.UserID,
		entry.RelatedID,
		entry.Message,
		entry.UpdateTime,
	)
	if err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}

	return nil
}

// ListLogs returns entries newest first, optionally scoped to a village.
func (s *Storage) ListLogs(ctx context.Context, villageID string, limit int) ([]models.LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, type, action, village_id, user_id, related_id, message, update_time
		FROM activity_logs
	`
	args := []any{}
	if villageID != "" {
		query += ` WHERE village_id = ?`
		args = append(args, villageID)
	}
	query += ` ORDER BY update_time DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []models.LogEntry
	for rows.Next() {
		var entry models.LogEntry
		if err := rows.Scan(
			&entry.LogID,
			&entry.Type,
			&entry.Action,
			&entry.VillageID,
			&entry.UserID,
			&entry.RelatedID,
			&entry.Message,
			&entry.UpdateTime,
		); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}

// PruneLogs removes entries older than cutoff.
func (s *Storage) PruneLogs(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM activity_logs WHERE update_time < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune logs: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rows), nil
}

// OptionAnalytics aggregates relocation-option takeup for a village.
func (s *Storage) OptionAnalytics(ctx context.Context, villageID string) (*api.OptionAnalytics, error) {
	count, err := s.FamilyCount(ctx, villageID)
	if err != nil {
		return nil, err
	}

	return &api.OptionAnalytics{
		VillageID: villageID,
		Option1:   count.FamiliesOption1,
		Option2:   count.FamiliesOption2,
		Total:     count.TotalFamilies,
	}, nil
}

// BuildingAnalytics returns the per-stage building histogram.
func (s *Storage) BuildingAnalytics(ctx context.Context, villageID string) (*api.BuildingAnalytics, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT current_stage, COUNT(*)
		FROM buildings
		WHERE village_id = ? AND deleted = 0
		GROUP BY current_stage
		ORDER BY current_stage
	`, villageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query building analytics: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	analytics := &api.BuildingAnalytics{VillageID: villageID, Stages: []api.StageCount{}}
	for rows.Next() {
		var bucket api.StageCount
		if err := rows.Scan(&bucket.Stage, &bucket.Count); err != nil {
			return nil, fmt.Errorf("failed to scan stage bucket: %w", err)
		}
		analytics.Stages = append(analytics.Stages, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return analytics, nil
}
