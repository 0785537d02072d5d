package storage

import (
	"context"
	"time"

	"github.com/maati-dev/maati/internal/models"
	"github.com/maati-dev/maati/pkg/api"
)

// VerificationStorage defines the interface for facility and field
// verification records. Status moves append to a per-record history.
type VerificationStorage interface {
	// CreateFacilityVerification inserts a facility check.
	CreateFacilityVerification(ctx context.Context, v *models.FacilityVerification) error

	// ListFacilityVerifications returns facility checks for a village.
	ListFacilityVerifications(ctx context.Context, villageID string) ([]models.FacilityVerification, error)

	// UpdateFacilityStatus moves a facility check to a new status.
	// Returns ErrVerificationNotFound if no record matches.
	UpdateFacilityStatus(ctx context.Context, verificationID string, change models.StatusChange) error

	// CreateFieldVerification inserts a plot check.
	CreateFieldVerification(ctx context.Context, v *models.FieldVerification) error

	// ListFieldVerifications returns plot checks for a village.
	ListFieldVerifications(ctx context.Context, villageID string) ([]models.FieldVerification, error)

	// UpdateFieldStatus moves a plot check to a new status.
	// Returns ErrVerificationNotFound if no record matches.
	UpdateFieldStatus(ctx context.Context, verificationID string, change models.StatusChange) error
}

// MaterialStorage defines the interface for construction material updates.
type MaterialStorage interface {
	// CreateMaterialUpdate inserts a material movement record with status
	// pending and seeds its history.
	CreateMaterialUpdate(ctx context.Context, update *models.MaterialUpdate) error

	// ListMaterialUpdates returns material records for a village.
	ListMaterialUpdates(ctx context.Context, villageID string) ([]models.MaterialUpdate, error)

	// UpdateMaterialStatus moves a material record to a new status.
	// Returns ErrMaterialUpdateNotFound if no record matches.
	UpdateMaterialStatus(ctx context.Context, updateID string, change models.StatusChange) error

	// MaterialStatusHistory returns the status trail, oldest first.
	// Returns ErrMaterialUpdateNotFound if no record matches.
	MaterialStatusHistory(ctx context.Context, updateID string) ([]models.StatusChange, error)
}

// LogStorage defines the interface for the activity log.
type LogStorage interface {
	// AppendLog inserts an activity log entry.
	AppendLog(ctx context.Context, entry *models.LogEntry) error

	// ListLogs returns entries newest first, optionally scoped to a
	// village. limit <= 0 falls back to a server default.
	ListLogs(ctx context.Context, villageID string, limit int) ([]models.LogEntry, error)

	// PruneLogs removes entries older than cutoff.
	// Returns the number of removed entries.
	PruneLogs(ctx context.Context, cutoff time.Time) (int, error)
}

// AnalyticsStorage defines the interface for dashboard aggregates.
type AnalyticsStorage interface {
	// OptionAnalytics aggregates relocation-option takeup for a village.
	OptionAnalytics(ctx context.Context, villageID string) (*api.OptionAnalytics, error)

	// BuildingAnalytics returns the per-stage building histogram.
	BuildingAnalytics(ctx context.Context, villageID string) (*api.BuildingAnalytics, error)
}
