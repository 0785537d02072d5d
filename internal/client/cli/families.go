package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/maati-dev/maati/internal/client/api"
)

func (c *Cli) runFamilies(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("families", flag.ContinueOnError)
	name := fs.String("name", "", "filter by mukhiya name")
	option := fs.Int("option", 0, "filter by relocation option (1 or 2)")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 10, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	villageID, err := c.villageID()
	if err != nil {
		return err
	}

	cards, total, err := c.apiClient.Beneficiaries(ctx, villageID, api.BeneficiaryQuery{
		MukhiyaName: *name,
		Page:        *page,
		Limit:       *limit,
		OptionID:    *option,
	})
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		c.io.Println("No families found")
		return nil
	}

	c.io.Printf("%-14s %s\n", "FAMILY", "MUKHIYA")
	for _, card := range cards {
		c.io.Printf("%-14s %s\n", card.FamilyID, card.MukhiyaName)
	}
	c.io.Printf("\nPage %d, showing %d of %d families\n", *page, len(cards), total)
	return nil
}

func (c *Cli) runFamily(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: maati family <id>")
	}

	detail, err := c.apiClient.Family(ctx, args[0])
	if err != nil {
		return err
	}

	family := detail.Family
	c.io.Printf("Family:   %s\n", family.FamilyID)
	c.io.Printf("Mukhiya:  %s (%s)\n", family.MukhiyaName, family.MukhiyaID)
	c.io.Printf("Village:  %s\n", family.VillageID)
	c.io.Printf("Option:   %d\n", family.RelocationOption)

	if len(detail.Members) > 0 {
		c.io.Println("\nMembers:")
		for _, member := range detail.Members {
			c.io.Printf("  %-20s %-12s age %d\n", member.Name, member.Relation, member.Age)
		}
	}
	if len(detail.Option1Housing) > 0 {
		c.io.Printf("\nHousing photos: %d\n", len(detail.Option1Housing))
		for _, photo := range detail.Option1Housing {
			c.io.Printf("  %s  %s\n", photo.UploadedOn.Format("2006-01-02"), photo.URL)
		}
	}
	if len(detail.Option2FundFlow) > 0 {
		c.io.Println("\nFund disbursements:")
		var totalAmount float64
		for _, txn := range detail.Option2FundFlow {
			c.io.Printf("  %s  %12.2f  %s\n", txn.TransactionDate.Format("2006-01-02"), txn.Amount, txn.Note)
			totalAmount += txn.Amount
		}
		c.io.Printf("  Total: %.2f\n", totalAmount)
	}
	return nil
}
