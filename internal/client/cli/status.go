package cli

import (
	"context"
	"time"
)

func (c *Cli) runStatus(_ context.Context) error {
	c.io.Println("=== Session Status ===")

	user := c.session.User()
	if user == nil {
		c.io.Println("Not logged in")
		return nil
	}

	c.io.Printf("User:    %s (%s)\n", user.Name, user.Role)
	if user.Email != "" {
		c.io.Printf("Email:   %s\n", user.Email)
	}
	if name := c.session.VillageName(); name != "" {
		c.io.Printf("Village: %s (%s)\n", name, c.session.VillageID())
	}

	remaining, ok := c.session.Remaining()
	switch {
	case !ok:
		c.io.Println("Token:   none (cookie session or logged out)")
	case remaining <= 0:
		c.io.Println("Token:   expired, run 'maati refresh'")
	default:
		expiresAt := time.UnixMilli(c.session.ExpiresAt())
		c.io.Printf("Token:   valid for %ds (until %s)\n", remaining, expiresAt.Format(time.RFC3339))
	}
	return nil
}

// runRefresh forces a token refresh regardless of the current expiry.
func (c *Cli) runRefresh(ctx context.Context) error {
	if !c.session.Authenticated() {
		c.io.Println("Not logged in")
		return nil
	}

	if !c.session.ForceRefresh(ctx) {
		c.io.Println("Refresh failed, session cleared. Run 'maati login'.")
		return nil
	}

	if remaining, ok := c.session.Remaining(); ok {
		c.io.Printf("Token refreshed, valid for %ds\n", remaining)
	} else {
		c.io.Println("Token refreshed")
	}
	return nil
}
