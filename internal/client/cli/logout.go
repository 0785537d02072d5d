package cli

import (
	"context"
	"fmt"
)

// runLogout revokes the server-side session, then clears the local one. The
// local session is cleared even when the server call fails, so a dead server
// cannot pin a stale token on disk.
func (c *Cli) runLogout(ctx context.Context) error {
	if !c.session.Authenticated() {
		c.io.Println("Not logged in")
		return nil
	}

	serverErr := c.apiClient.Logout(ctx)
	c.session.Logout(ctx)

	if serverErr != nil {
		c.io.Println("Local session cleared")
		return fmt.Errorf("server logout failed: %w", serverErr)
	}
	c.io.Println("Logged out")
	return nil
}
