package cli

import (
	"context"
)

func (c *Cli) runBuildings(ctx context.Context) error {
	villageID, err := c.villageID()
	if err != nil {
		return err
	}

	buildings, err := c.apiClient.Buildings(ctx, villageID)
	if err != nil {
		return err
	}
	if len(buildings) == 0 {
		c.io.Println("No buildings recorded")
		return nil
	}

	c.io.Printf("%-14s %-24s %-12s %s\n", "ID", "NAME", "TYPE", "STAGE")
	for _, building := range buildings {
		c.io.Printf("%-14s %-24s %-12s %d\n",
			building.BuildingID, building.Name, building.TypeID, building.Stage)
	}
	c.io.Printf("\n%d building(s)\n", len(buildings))
	return nil
}
