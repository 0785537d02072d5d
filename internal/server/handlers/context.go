package handlers

import "context"

// contextKey is the type for request context keys set by the auth middleware.
type contextKey string

const (
	// UserIDKey stores the authenticated employee id.
	UserIDKey contextKey = "user_id"
	// RoleKey stores the authenticated employee role.
	RoleKey contextKey = "role"
)

// GetUserID extracts the authenticated employee id from the request context.
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetRole extracts the authenticated employee role from the request context.
func GetRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}
