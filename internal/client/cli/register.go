package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/maati-dev/maati/internal/validation"
	"github.com/maati-dev/maati/pkg/api"
)

// runRegister sets the password on a pre-provisioned employee record. The
// details entered must match what the administration seeded.
func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Registration ===")

	empID, mobile, role, err := c.promptIdentity()
	if err != nil {
		return err
	}

	password, err := c.getPassword("Password: ")
	if err != nil {
		return err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}

	// Confirmation only makes sense for interactive input.
	if os.Getenv("MAATI_PASSWORD") == "" {
		confirm, err := c.io.ReadPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("failed to read password confirmation: %w", err)
		}
		if confirm != password {
			return fmt.Errorf("passwords do not match")
		}
	}

	if err := c.apiClient.Register(ctx, api.RegisterRequest{
		EmpID:    empID,
		Mobile:   mobile,
		Role:     role,
		Password: password,
	}); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	c.io.Println("Registration successful. Run 'maati login' to start a session.")
	return nil
}
