package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coopco/postpilot/internal/publisher"
	"github.com/coopco/postpilot/internal/store"
)

const scheduleLayout = "2006-01-02 15:04"

// composeMode runs the full post-creation flow: generate a draft from a
// topic and tone, suggest tags, attach media, then post now or schedule.
func (c *Controller) composeMode(ctx context.Context) {
	for {
		if err := c.composeOne(ctx); err != nil && err != errCancelled {
			c.report("compose", err)
		}
		again, err := c.ask("Would you like to post something else? (y/n): ")
		if err != nil || strings.ToLower(again) != "y" {
			return
		}
	}
}

func (c *Controller) composeOne(ctx context.Context) error {
	topic, err := c.ask("What should the post be about? ")
	if err != nil {
		return errCancelled
	}
	tone, err := c.ask("What tone or sentiment should it have? (e.g., excited, professional, funny): ")
	if err != nil {
		return errCancelled
	}

	prompt := fmt.Sprintf("Write a social media post (maximum %d characters) about: %s\nTone/Sentiment: %s\nOnly output the post text itself, nothing else.",
		publisher.PlatformLimit, topic, tone)

	for {
		draft, err := c.text.Generate(ctx, prompt)
		if err != nil {
			return fmt.Errorf("failed to generate post: %w", err)
		}
		draft, truncated := publisher.Truncate(strings.TrimSpace(draft))
		if truncated {
			c.printf("Note: the generated post was over %d characters and has been shortened.\n", publisher.PlatformLimit)
		}

		if tags := c.suggestTags(ctx, draft); tags != "" {
			c.printf("\nSuggested hashtags/mentions: %s\n", tags)
			edited, err := c.ask("Press Enter to accept, type replacements, or 'n' for none: ")
			if err == nil {
				switch strings.ToLower(edited) {
				case "":
					draft = combineWithTags(draft, tags)
				case "n":
				default:
					draft = combineWithTags(draft, edited)
				}
			}
		}

		c.printf("\nGenerated post:\n%s\n\n", draft)
		action, err := c.ask("(a)ccept, (e)dit, (r)egenerate, or (c)ancel? ")
		if err != nil {
			return errCancelled
		}
		switch strings.ToLower(action) {
		case "a":
			return c.deliver(ctx, draft)
		case "e":
			edited, err := c.ask("Enter your edited post: ")
			if err != nil || edited == "" {
				continue
			}
			edited, truncated := publisher.Truncate(edited)
			if truncated {
				c.printf("Note: your edit was over %d characters and has been shortened.\n", publisher.PlatformLimit)
			}
			return c.deliver(ctx, edited)
		case "r":
			continue
		case "c":
			c.printf("Post cancelled.\n")
			return errCancelled
		default:
			c.printf("Invalid option.\n")
		}
	}
}

// deliver attaches optional media, confirms, then posts immediately or
// schedules for later.
func (c *Controller) deliver(ctx context.Context, text string) error {
	mediaRef := ""
	attach, err := c.ask("Attach an image, GIF, or video? (y/n): ")
	if err == nil && strings.ToLower(attach) == "y" {
		mediaRef = c.resolveMediaPath()
	}

	confirm, err := c.ask("Ready to go. Post it? (y/n): ")
	if err != nil || strings.ToLower(confirm) != "y" {
		c.printf("Post cancelled.\n")
		return errCancelled
	}

	when, err := c.ask("Post (n)ow or (s)chedule for later? ")
	if err != nil {
		return errCancelled
	}
	if strings.ToLower(when) == "s" {
		return c.scheduleFor(text, mediaRef)
	}

	result, err := c.pub.Publish(ctx, text, mediaRef)
	if err != nil {
		return err
	}
	if err := c.history.Append(store.HistoryEntry{Text: result.Text, MediaRef: mediaRef}); err != nil {
		c.errlog.Append("history append", err)
	}
	c.printf("Posted successfully!\n")
	return nil
}

// scheduleFor parses the fire time and hands the post to the scheduler.
// Invalid input loops; a past time is rejected by the scheduler.
func (c *Controller) scheduleFor(text, mediaRef string) error {
	for {
		raw, err := c.ask(fmt.Sprintf("When should it be posted? (%s, local time): ", scheduleLayout))
		if err != nil {
			return errCancelled
		}
		fireAt, parseErr := time.ParseInLocation(scheduleLayout, raw, time.Local)
		if parseErr != nil {
			c.printf("Could not parse %q. Use the format %s.\n", raw, scheduleLayout)
			continue
		}
		id, schedErr := c.sched.Schedule(text, mediaRef, fireAt)
		if schedErr != nil {
			c.printf("Could not schedule: %v\n", schedErr)
			continue
		}
		c.printf("Scheduled (%s) for %s.\n", id, fireAt.Format(scheduleLayout))
		return nil
	}
}
