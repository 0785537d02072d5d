package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/maati-dev/maati/pkg/api"
)

func (c *Cli) runMeetings(ctx context.Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "list":
		return c.listMeetings(ctx)
	case "add":
		return c.addMeeting(ctx)
	case "rm":
		if len(args) < 2 {
			return fmt.Errorf("usage: maati meetings rm <id>")
		}
		if err := c.apiClient.DeleteMeeting(ctx, args[1]); err != nil {
			return err
		}
		c.io.Println("Meeting deleted")
		return nil
	default:
		return fmt.Errorf("unknown meetings subcommand: %s", sub)
	}
}

func (c *Cli) listMeetings(ctx context.Context) error {
	villageID, err := c.villageID()
	if err != nil {
		return err
	}

	meetings, err := c.apiClient.Meetings(ctx, villageID)
	if err != nil {
		return err
	}
	if len(meetings) == 0 {
		c.io.Println("No meetings recorded")
		return nil
	}

	for _, meeting := range meetings {
		c.io.Printf("%s  %s\n", meeting.MeetingID, meeting.Title)
		c.io.Printf("    held %s by %s, %d attendee(s)\n",
			meeting.HeldOn.Format("2006-01-02"), meeting.HeldBy, meeting.Attendees)
		if meeting.Place != "" {
			c.io.Printf("    place: %s\n", meeting.Place)
		}
	}
	return nil
}

func (c *Cli) addMeeting(ctx context.Context) error {
	villageID, err := c.villageID()
	if err != nil {
		return err
	}

	title, err := c.io.ReadInput("Title: ")
	if err != nil {
		return err
	}
	heldBy, err := c.io.ReadInput("Held by: ")
	if err != nil {
		return err
	}
	place, err := c.io.ReadInput("Place (optional): ")
	if err != nil {
		return err
	}
	heldOn, err := c.io.ReadInput("Held on (YYYY-MM-DD, empty for today): ")
	if err != nil {
		return err
	}
	attendeesRaw, err := c.io.ReadInput("Attendees: ")
	if err != nil {
		return err
	}
	description, err := c.io.ReadInput("Description (optional): ")
	if err != nil {
		return err
	}

	heldOnTime := time.Now()
	if heldOn != "" {
		heldOnTime, err = time.Parse("2006-01-02", heldOn)
		if err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", heldOn)
		}
	}

	attendees := 0
	if attendeesRaw != "" {
		attendees, err = strconv.Atoi(attendeesRaw)
		if err != nil || attendees < 0 {
			return fmt.Errorf("invalid attendee count %q", attendeesRaw)
		}
	}

	meeting, err := c.apiClient.AddMeeting(ctx, api.MeetingRequest{
		VillageID:   villageID,
		Title:       title,
		Description: description,
		HeldBy:      heldBy,
		Place:       place,
		HeldOn:      heldOnTime.Format(time.RFC3339),
		Attendees:   attendees,
	})
	if err != nil {
		return err
	}

	c.io.Printf("Meeting recorded: %s\n", meeting.MeetingID)
	return nil
}
