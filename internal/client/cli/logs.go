package cli

import (
	"context"
	"flag"
)

func (c *Cli) runLogs(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "maximum number of entries")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Logs can be village-scoped or global, so a missing selection is fine.
	villageID := c.village
	if villageID == "" {
		villageID = c.session.VillageID()
	}

	entries, err := c.apiClient.Logs(ctx, villageID, *limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		c.io.Println("No activity recorded")
		return nil
	}

	for _, entry := range entries {
		c.io.Printf("%s  %-18s %-14s %s\n",
			entry.UpdateTime.Format("2006-01-02 15:04"),
			entry.Type, entry.Action, entry.RelatedID)
	}
	return nil
}
