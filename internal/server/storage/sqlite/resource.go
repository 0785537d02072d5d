package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maati-dev/maati/internal/models"
	"github.com/maati-dev/maati/internal/server/storage"
)

// CreateMeeting inserts a meeting record.
func (s *Storage) CreateMeeting(ctx context.Context, meeting *models.Meeting) error {
	query := `
		INSERT INTO meetings (id, village_id, title, description, held_by, place, held_on, attendees, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		meeting.MeetingID,
		meeting.VillageID,
		meeting.Title,
		meeting.Description,
		meeting.HeldBy,
		meeting.Place,
		meeting.HeldOn,
		meeting.Attendees,
		meeting.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert meeting: %w", err)
	}

	return nil
}

// ListMeetings returns meetings for a village, newest first.
func (s *Storage) ListMeetings(ctx context.Context, villageID string) ([]models.Meeting, error) {
	query := `
		SELECT id, village_id, title, description, held_by, place, held_on, attendees, created_at
		FROM meetings
		WHERE village_id = ?
		ORDER BY held_on DESC
	`

	rows, err := s.db.QueryContext(ctx, query, villageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query meetings: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var meetings []models.Meeting
	for rows.Next() {
		var meeting models.Meeting
		if err := rows.Scan(
			&meeting.MeetingID,
			&meeting.VillageID,
			&meeting.Title,
			&meeting.Description,
			&meeting.HeldBy,
			&meeting.Place,
			&meeting.HeldOn,
			&meeting.Attendees,
			&meeting.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		meetings = append(meetings, meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return meetings, nil
}

// DeleteMeeting removes a meeting record.
func (s *Storage) DeleteMeeting(ctx context.Context, meetingID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = ?`, meetingID)
	if err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrMeetingNotFound
	}
	return nil
}

// CreateBuilding inserts a building record.
func (s *Storage) CreateBuilding(ctx context.Context, building *models.Building) error {
	query := `
		INSERT INTO buildings (id, village_id, name, type_id, current_stage, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		building.BuildingID,
		building.VillageID,
		building.Name,
		building.TypeID,
		building.Stage,
		building.CreatedAt,
		building.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert building: %w", err)
	}

	return nil
}

// UpdateBuilding replaces name, type and stage of a building.
func (s *Storage) UpdateBuilding(ctx context.Context, building *models.Building) error {
	query := `
		UPDATE buildings
		SET name = ?, type_id = ?, current_stage = ?, updated_at = ?
		WHERE id = ? AND deleted = 0
	`

	result, err := s.db.ExecContext(ctx, query,
		building.Name,
		building.TypeID,
		building.Stage,
		building.UpdatedAt,
		building.BuildingID,
	)
	if err != nil {
		return fmt.Errorf("failed to update building: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrBuildingNotFound
	}
	return nil
}

// GetBuilding retrieves one non-deleted building.
func (s *Storage) GetBuilding(ctx context.Context, buildingID string) (*models.Building, error) {
	query := `
		SELECT id, village_id, name, type_id, current_stage, created_at, updated_at
		FROM buildings
		WHERE id = ? AND deleted = 0
	`

	building := &models.Building{}
	err := s.db.QueryRowContext(ctx, query, buildingID).Scan(
		&building.BuildingID,
		&building.VillageID,
		&building.Name,
		&building.TypeID,
		&building.Stage,
		&building.CreatedAt,
		&building.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrBuildingNotFound
		}
		return nil, fmt.Errorf("failed to get building: %w", err)
	}

	return building, nil
}

// ListBuildings returns non-deleted buildings for a village.
func (s *Storage) ListBuildings(ctx context.Context, villageID string) ([]models.Building, error) {
	query := `
		SELECT id, village_id, name, type_id, current_stage, created_at, updated_at
		FROM buildings
		WHERE village_id = ? AND deleted = 0
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query, villageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query buildings: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var buildings []models.Building
	for rows.Next() {
		var building models.Building
		if err := rows.Scan(
			&building.BuildingID,
			&building.VillageID,
			&building.Name,
			&building.TypeID,
			&building.Stage,
			&building.CreatedAt,
			&building.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan building: %w", err)
		}
		buildings = append(buildings, building)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return buildings, nil
}

// DeleteBuilding soft-deletes a building.
func (s *Storage) DeleteBuilding(ctx context.Context, buildingID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE buildings SET deleted = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted = 0`,
		buildingID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete building: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrBuildingNotFound
	}
	return nil
}

// CreateFeedback inserts a feedback record.
func (s *Storage) CreateFeedback(ctx context.Context, feedback *models.Feedback) error {
	query := `
		INSERT INTO feedback (id, village_id, family_id, name, mobile, email, feedback_type, comments, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		feedback.FeedbackID,
		feedback.VillageID,
		feedback.FamilyID,
		feedback.Name,
		feedback.Mobile,
		feedback.Email,
		feedback.FeedbackType,
		feedback.Comments,
		feedback.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}

	return nil
}

// GetFeedback retrieves one feedback record.
func (s *Storage) GetFeedback(ctx context.Context, feedbackID string) (*models.Feedback, error) {
	query := `
		SELECT id, village_id, family_id, name, mobile, email, feedback_type, comments, created_at
		FROM feedback
		WHERE id = ?
	`

	feedback := &models.Feedback{}
	err := s.db.QueryRowContext(ctx, query, feedbackID).Scan(
		&feedback.FeedbackID,
		&feedback.VillageID,
		&feedback.FamilyID,
		&feedback.Name,
		&feedback.Mobile,
		&feedback.Email,
		&feedback.FeedbackType,
		&feedback.Comments,
		&feedback.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	return feedback, nil
}

// ListFeedback returns feedback for a village, newest first.
func (s *Storage) ListFeedback(ctx context.Context, villageID string) ([]models.Feedback, error) {
	query := `
		SELECT id, village_id, family_id, name, mobile, email, feedback_type, comments, created_at
		FROM feedback
		WHERE village_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, villageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []models.Feedback
	for rows.Next() {
		var feedback models.Feedback
		if err := rows.Scan(
			&feedback.FeedbackID,
			&feedback.VillageID,
			&feedback.FamilyID,
			&feedback.Name,
			&feedback.Mobile,
			&feedback.Email,
			&feedback.FeedbackType,
			&feedback.Comments,
			&feedback.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		records = append(records, feedback)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}
