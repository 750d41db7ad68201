package console

import (
	"context"
	"strings"
)

// scheduledMode shows one-shot and recurring schedules and lets the
// user cancel or add entries.
func (c *Controller) scheduledMode(_ context.Context) {
	posts := c.sched.List()
	if len(posts) == 0 {
		c.printf("No scheduled posts.\n")
	} else {
		c.printf("Scheduled posts:\n")
		for _, p := range posts {
			c.printf("  %s  [%s]  %s  %s\n", p.ID, p.Status, p.FireAt.Local().Format(scheduleLayout), p.Text)
		}
	}

	recurring := c.recurring.List()
	if len(recurring) > 0 {
		c.printf("Recurring posts:\n")
		for _, p := range recurring {
			c.printf("  %s  [%s]  %s\n", p.ID, p.Schedule, p.Text)
		}
	}

	for {
		input, err := c.ask("(c)ancel an entry, (a)dd recurring, or press Enter to return: ")
		if err != nil || input == "" {
			return
		}
		switch strings.ToLower(input) {
		case "c":
			c.cancelEntry()
		case "a":
			c.addRecurring()
		default:
			c.printf("Invalid option.\n")
		}
	}
}

func (c *Controller) cancelEntry() {
	id, err := c.ask("Entry ID to cancel: ")
	if err != nil || id == "" {
		return
	}
	if strings.HasPrefix(id, "rp_") {
		if err := c.recurring.Remove(id); err != nil {
			c.printf("Could not remove: %v\n", err)
			return
		}
		c.printf("Removed %s.\n", id)
		return
	}
	if err := c.sched.Cancel(id); err != nil {
		c.printf("Could not cancel: %v\n", err)
		return
	}
	c.printf("Cancelled %s.\n", id)
}

func (c *Controller) addRecurring() {
	schedule, err := c.ask("Cron schedule (e.g., '0 9 * * *' or '@daily'): ")
	if err != nil || schedule == "" {
		return
	}
	text, err := c.ask("Post text: ")
	if err != nil || text == "" {
		return
	}
	id, addErr := c.recurring.Add(schedule, text, "")
	if addErr != nil {
		c.printf("Could not add: %v\n", addErr)
		return
	}
	c.printf("Added recurring post %s.\n", id)
}
