package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maati-dev/maati/internal/models"
	"github.com/maati-dev/maati/internal/server/storage"
)

// CreateUser inserts a pre-provisioned employee record.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, role, mobile, email, village_id, password_hash, verified, deleted, created_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.UserID,
		user.Name,
		user.Role,
		user.Mobile,
		user.Email,
		user.VillageID,
		user.PasswordHash,
		user.Verified,
		user.Deleted,
		user.CreatedAt,
		user.LastLogin,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUser retrieves a non-deleted employee by employee id.
func (s *Storage) GetUser(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT id, name, role, mobile, email, village_id, password_hash, verified, deleted, created_at, last_login
		FROM users
		WHERE id = ? AND deleted = 0
	`

	user := &models.User{}
	var lastLogin sql.NullTime

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&user.UserID,
		&user.Name,
		&user.Role,
		&user.Mobile,
		&user.Email,
		&user.VillageID,
		&user.PasswordHash,
		&user.Verified,
		&user.Deleted,
		&user.CreatedAt,
		&lastLogin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}

	return user, nil
}

// SetPassword sets the password hash and appends it to the history.
func (s *Storage) SetPassword(ctx context.Context, userID, passwordHash string, changedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, verified = 1 WHERE id = ? AND deleted = 0`,
		passwordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrUserNotFound
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO password_history (user_id, password_hash, changed_at) VALUES (?, ?, ?)`,
		userID, passwordHash, changedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append password history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit password change: %w", err)
	}
	return nil
}

// PasswordHistory returns past password hashes, newest first.
func (s *Storage) PasswordHistory(ctx context.Context, userID string) ([]models.PasswordRecord, error) {
	query := `
		SELECT user_id, password_hash, changed_at
		FROM password_history
		WHERE user_id = ?
		ORDER BY changed_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query password history: %w", err)
	}
	defer rows.Close()

	var records []models.PasswordRecord
	for rows.Next() {
		var record models.PasswordRecord
		if err := rows.Scan(&record.UserID, &record.PasswordHash, &record.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan password record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate password history: %w", err)
	}

	return records, nil
}

// UpdateLastLogin updates the last login timestamp.
func (s *Storage) UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE id = ?`,
		lastLogin, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}
