package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that no employee record matches
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a duplicate employee id
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrPasswordReused indicates the password matches one from history
	ErrPasswordReused = errors.New("password was used before")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrVillageNotFound indicates that village was not found
	ErrVillageNotFound = errors.New("village not found")

	// ErrFamilyNotFound indicates that family was not found
	ErrFamilyNotFound = errors.New("family not found")

	// ErrMeetingNotFound indicates that meeting was not found
	ErrMeetingNotFound = errors.New("meeting not found")

	// ErrBuildingNotFound indicates that building was not found
	ErrBuildingNotFound = errors.New("building not found")

	// ErrFeedbackNotFound indicates that feedback record was not found
	ErrFeedbackNotFound = errors.New("feedback not found")

	// ErrVerificationNotFound indicates that verification record was not found
	ErrVerificationNotFound = errors.New("verification not found")

	// ErrMaterialUpdateNotFound indicates that material update was not found
	ErrMaterialUpdateNotFound = errors.New("material update not found")
)
