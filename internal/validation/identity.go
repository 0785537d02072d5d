package validation

import (
	"fmt"
	"regexp"
)

// EmpIDPattern defines the accepted employee id format:
// uppercase letters and digits, 3-16 characters (e.g. "EMP042").
var EmpIDPattern = regexp.MustCompile(`^[A-Z0-9]{3,16}$`)

// MobilePattern accepts a 10-digit Indian mobile number, optionally
// prefixed with +91.
var MobilePattern = regexp.MustCompile(`^(\+91)?[6-9][0-9]{9}$`)

// MinPasswordLen is the minimum accepted password length.
const MinPasswordLen = 8

// ValidateEmpID checks that an employee id matches the provisioning format.
func ValidateEmpID(empID string) error {
	if empID == "" {
		return fmt.Errorf("employee id cannot be empty")
	}
	if !EmpIDPattern.MatchString(empID) {
		return fmt.Errorf("employee id must be 3-16 uppercase letters or digits")
	}
	return nil
}

// ValidateMobile checks that a mobile number is a plausible 10-digit number.
func ValidateMobile(mobile string) error {
	if mobile == "" {
		return fmt.Errorf("mobile number cannot be empty")
	}
	if !MobilePattern.MatchString(mobile) {
		return fmt.Errorf("mobile number must be a 10-digit number starting with 6-9")
	}
	return nil
}

// ValidatePassword enforces the minimum password policy.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}
	return nil
}
