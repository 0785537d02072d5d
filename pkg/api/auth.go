package api

import "encoding/json"

// RegisterRequest sets the password for a pre-provisioned employee record.
type RegisterRequest struct {
	EmpID    string `json:"empId" validate:"required"`
	Mobile   string `json:"mobileNumber" validate:"required"`
	Role     string `json:"role" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest represents the credentials exchange.
// IsApp selects token mode; otherwise the token travels in an http-only cookie.
type LoginRequest struct {
	EmpID    string `json:"empId" validate:"required"`
	Mobile   string `json:"mobileNumber" validate:"required"`
	Role     string `json:"role" validate:"required"`
	Password string `json:"password" validate:"required"`
	IsApp    bool   `json:"isApp"`
}

// RefreshRequest carries the stored refresh token, when the client has one.
// Cookie-based sessions send an empty body and rely on the bearer header.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// UserInfo is the identity payload included in auth results.
type UserInfo struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`
}

// AuthResult is the result payload of login and refresh.
// ExpiresIn (seconds) takes priority over ExpiresAt (ms since epoch) on the
// client; both may be absent for cookie-based sessions.
// Village, when present, is the caller's currently selected village record;
// its shape is loose so it is carried raw and normalized client-side.
type AuthResult struct {
	Token        string          `json:"token,omitempty"`
	RefreshToken string          `json:"refreshToken,omitempty"`
	User         *UserInfo       `json:"user,omitempty"`
	Village      json.RawMessage `json:"village,omitempty"`
	ExpiresIn    int64           `json:"expiresIn,omitempty"`
	ExpiresAt    int64           `json:"expiresAt,omitempty"`
}
