package storage

import (
	"context"

	"github.com/maati-dev/maati/internal/models"
)

// MeetingStorage defines the interface for consultation meeting records.
type MeetingStorage interface {
	// CreateMeeting inserts a meeting record.
	CreateMeeting(ctx context.Context, meeting *models.Meeting) error

	// ListMeetings returns meetings for a village, newest first.
	ListMeetings(ctx context.Context, villageID string) ([]models.Meeting, error)

	// DeleteMeeting removes a meeting record.
	// Returns ErrMeetingNotFound if no record matches.
	DeleteMeeting(ctx context.Context, meetingID string) error
}

// BuildingStorage defines the interface for community building records.
// Deletion is soft: deleted buildings stay in storage but drop out of lists.
type BuildingStorage interface {
	// CreateBuilding inserts a building record.
	CreateBuilding(ctx context.Context, building *models.Building) error

	// UpdateBuilding replaces name, type and stage of a building.
	// Returns ErrBuildingNotFound if no record matches.
	UpdateBuilding(ctx context.Context, building *models.Building) error

	// ListBuildings returns non-deleted buildings for a village.
	ListBuildings(ctx context.Context, villageID string) ([]models.Building, error)

	// GetBuilding retrieves one non-deleted building.
	// Returns ErrBuildingNotFound if no record matches.
	GetBuilding(ctx context.Context, buildingID string) (*models.Building, error)

	// DeleteBuilding soft-deletes a building.
	// Returns ErrBuildingNotFound if no record matches.
	DeleteBuilding(ctx context.Context, buildingID string) error
}

// FeedbackStorage defines the interface for villager feedback.
type FeedbackStorage interface {
	// CreateFeedback inserts a feedback record.
	CreateFeedback(ctx context.Context, feedback *models.Feedback) error

	// GetFeedback retrieves one feedback record.
	// Returns ErrFeedbackNotFound if no record matches.
	GetFeedback(ctx context.Context, feedbackID string) (*models.Feedback, error)

	// ListFeedback returns feedback for a village, newest first.
	ListFeedback(ctx context.Context, villageID string) ([]models.Feedback, error)
}
