package cli

import (
	"context"
	"fmt"

	"github.com/maati-dev/maati/internal/client/session"
	"github.com/maati-dev/maati/internal/validation"
	"github.com/maati-dev/maati/pkg/api"
)

// promptIdentity reads the employee ID, mobile number and role shared by
// register and login.
func (c *Cli) promptIdentity() (empID, mobile, role string, err error) {
	empID, err = c.io.ReadInput("Employee ID: ")
	if err != nil {
		return "", "", "", fmt.Errorf("failed to read employee ID: %w", err)
	}
	if err = validation.ValidateEmpID(empID); err != nil {
		return "", "", "", err
	}

	mobile, err = c.io.ReadInput("Mobile number: ")
	if err != nil {
		return "", "", "", fmt.Errorf("failed to read mobile number: %w", err)
	}
	if err = validation.ValidateMobile(mobile); err != nil {
		return "", "", "", err
	}

	role, err = c.io.ReadInput("Role: ")
	if err != nil {
		return "", "", "", fmt.Errorf("failed to read role: %w", err)
	}
	if role == "" {
		return "", "", "", fmt.Errorf("role cannot be empty")
	}
	return empID, mobile, role, nil
}

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")

	empID, mobile, role, err := c.promptIdentity()
	if err != nil {
		return err
	}

	password, err := c.getPassword("Password: ")
	if err != nil {
		return err
	}

	result, err := c.apiClient.Login(ctx, api.LoginRequest{
		EmpID:    empID,
		Mobile:   mobile,
		Role:     role,
		Password: password,
		IsApp:    true,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	c.session.Login(ctx, session.LoginData{
		User:         result.User,
		Village:      result.Village,
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
		ExpiresAt:    result.ExpiresAt,
	})

	if result.User != nil {
		c.io.Printf("Logged in as %s (%s)\n", result.User.Name, result.User.Role)
	} else {
		c.io.Println("Logged in")
	}
	if name := c.session.VillageName(); name != "" {
		c.io.Printf("Assigned village: %s (%s)\n", name, c.session.VillageID())
	}
	if remaining, ok := c.session.Remaining(); ok {
		c.io.Printf("Token valid for %ds\n", remaining)
	}
	return nil
}
