package cli

import (
	"context"
)

// runDashboard prints the per-village overview the admin panel shows on its
// landing page: family counts, option takeup and building progress.
func (c *Cli) runDashboard(ctx context.Context) error {
	villageID, err := c.villageID()
	if err != nil {
		return err
	}

	count, err := c.apiClient.FamilyCount(ctx, villageID)
	if err != nil {
		return err
	}
	options, err := c.apiClient.OptionAnalytics(ctx, villageID)
	if err != nil {
		return err
	}
	buildingStats, err := c.apiClient.BuildingAnalytics(ctx, villageID)
	if err != nil {
		return err
	}

	c.io.Printf("=== Dashboard: %s ===\n", villageID)
	c.io.Printf("Families: %d total\n", count.TotalFamilies)
	c.io.Printf("  option 1 (house): %d\n", options.Option1)
	c.io.Printf("  option 2 (funds): %d\n", options.Option2)

	if len(buildingStats.Stages) > 0 {
		c.io.Println("Buildings by stage:")
		for _, bucket := range buildingStats.Stages {
			c.io.Printf("  stage %d: %d\n", bucket.Stage, bucket.Count)
		}
	} else {
		c.io.Println("Buildings: none recorded")
	}
	return nil
}
