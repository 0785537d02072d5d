package cli

import (
	"context"
	"flag"
	"fmt"
	"time"
)

func (c *Cli) runVillages(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("villages", flag.ContinueOnError)
	stage := fs.Int("stage", 0, "filter by current relocation stage")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cards, err := c.apiClient.Villages(ctx, *stage)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		c.io.Println("No villages found")
		return nil
	}

	c.io.Printf("%-12s %-24s %-6s %s\n", "ID", "NAME", "STAGE", "UPDATED")
	for _, card := range cards {
		c.io.Printf("%-12s %-24s %-6d %s\n",
			card.VillageID, card.Name, card.CurrStage,
			card.LastUpdatedAt.Format("2006-01-02"))
	}
	c.io.Printf("\n%d village(s)\n", len(cards))
	return nil
}

func (c *Cli) runVillage(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: maati village <id>")
	}

	village, err := c.apiClient.Village(ctx, args[0])
	if err != nil {
		return err
	}

	c.io.Printf("Village:     %s (%s)\n", village.Name, village.VillageID)
	c.io.Printf("Stage:       %d of %d\n", village.CurrentStage, village.TotalStages)
	c.io.Printf("Location:    %.6f, %.6f\n", village.Latitude, village.Longitude)
	c.io.Printf("Relocation:  %.2f ha (diverted %.2f ha)\n", village.AreaOfRelocation, village.AreaDiverted)
	c.io.Printf("Updated:     %s\n", village.UpdatedAt.Format(time.RFC3339))

	count, err := c.apiClient.FamilyCount(ctx, village.VillageID)
	if err != nil {
		return err
	}
	c.io.Printf("Families:    %d total (option 1: %d, option 2: %d)\n",
		count.TotalFamilies, count.FamiliesOption1, count.FamiliesOption2)
	return nil
}
