package models

import "time"

// User is a program employee allowed to sign in.
// Accounts are pre-provisioned by an administrator; registration only sets
// the password on an existing record.
type User struct {
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	UserID       string     `json:"userId"` // employee id, e.g. "EMP042"
	Name         string     `json:"name"`
	Role         string     `json:"role"`
	Mobile       string     `json:"mobile"`
	Email        string     `json:"email,omitempty"`
	VillageID    string     `json:"villageId,omitempty"` // assigned village, if any
	PasswordHash string     `json:"-"`
	Verified     bool       `json:"verified"`
	Deleted      bool       `json:"deleted"`
}

// RefreshToken is an opaque rotating token stored server-side.
type RefreshToken struct {
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
}

// PasswordRecord keeps password history so old passwords cannot be reused.
type PasswordRecord struct {
	ChangedAt    time.Time `json:"changedAt"`
	UserID       string    `json:"userId"`
	PasswordHash string    `json:"-"`
}
