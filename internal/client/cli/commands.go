package cli

import (
	"context"
	"fmt"
)

// Run dispatches a single command. Errors bubble up to main, which prints
// them and sets the exit code.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "refresh":
		return c.runRefresh(ctx)
	case "villages":
		return c.runVillages(ctx, args)
	case "village":
		return c.runVillage(ctx, args)
	case "families":
		return c.runFamilies(ctx, args)
	case "family":
		return c.runFamily(ctx, args)
	case "meetings":
		return c.runMeetings(ctx, args)
	case "buildings":
		return c.runBuildings(ctx)
	case "feedback":
		return c.runFeedback(ctx, args)
	case "logs":
		return c.runLogs(ctx, args)
	case "dashboard":
		return c.runDashboard(ctx)
	default:
		PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}
