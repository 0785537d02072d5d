package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runFeedback(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "list":
		return c.listFeedback(ctx)
	case "get":
		if len(args) < 2 {
			return fmt.Errorf("usage: maati feedback get <id>")
		}
		return c.showFeedback(ctx, args[1])
	default:
		return fmt.Errorf("unknown feedback subcommand: %s", sub)
	}
}

func (c *Cli) listFeedback(ctx context.Context) error {
	villageID, err := c.villageID()
	if err != nil {
		return err
	}

	items, err := c.apiClient.FeedbackList(ctx, villageID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		c.io.Println("No feedback submitted")
		return nil
	}

	for _, item := range items {
		c.io.Printf("%s  [%s] %s (%s)\n",
			item.FeedbackID, item.FeedbackType, item.Name,
			item.CreatedAt.Format("2006-01-02"))
	}
	c.io.Printf("\n%d feedback record(s)\n", len(items))
	return nil
}

func (c *Cli) showFeedback(ctx context.Context, feedbackID string) error {
	item, err := c.apiClient.Feedback(ctx, feedbackID)
	if err != nil {
		return err
	}

	c.io.Printf("Feedback: %s (%s)\n", item.FeedbackID, item.FeedbackType)
	c.io.Printf("From:     %s", item.Name)
	if item.Mobile != "" {
		c.io.Printf(", %s", item.Mobile)
	}
	if item.Email != "" {
		c.io.Printf(", %s", item.Email)
	}
	c.io.Println("")
	if item.FamilyID != "" {
		c.io.Printf("Family:   %s\n", item.FamilyID)
	}
	c.io.Printf("Village:  %s\n", item.VillageID)
	c.io.Printf("Date:     %s\n", item.CreatedAt.Format(time.RFC3339))
	c.io.Println("")
	c.io.Println(item.Comments)
	return nil
}
