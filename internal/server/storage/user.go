package storage

import (
	"context"
	"time"

	"github.com/maati-dev/maati/internal/models"
)

// UserStorage defines the interface for employee account persistence.
// Accounts are pre-provisioned; registration only sets the password.
type UserStorage interface {
	// CreateUser inserts a pre-provisioned employee record.
	// Returns ErrUserAlreadyExists on a duplicate employee id.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a non-deleted employee by employee id.
	// Returns ErrUserNotFound if no record matches.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// SetPassword sets the password hash and appends it to the password
	// history. Returns ErrUserNotFound if no record matches.
	SetPassword(ctx context.Context, userID, passwordHash string, changedAt time.Time) error

	// PasswordHistory returns past password hashes, newest first.
	PasswordHistory(ctx context.Context, userID string) ([]models.PasswordRecord, error)

	// UpdateLastLogin updates the last login timestamp.
	UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error
}
