package console

import (
	"context"
	"strconv"
	"strings"

	"github.com/coopco/postpilot/internal/store"
)

// historyMode lists past posts and supports re-posting by number and
// substring search.
func (c *Controller) historyMode(ctx context.Context) {
	entries := c.history.List()
	if len(entries) == 0 {
		c.printf("No posts yet.\n")
		return
	}
	c.printEntries(entries)

	for {
		input, err := c.ask("Enter a number to re-post, 's' to search, or press Enter to return: ")
		if err != nil || input == "" {
			return
		}
		if strings.ToLower(input) == "s" {
			c.searchHistory()
			continue
		}
		n, convErr := strconv.Atoi(input)
		if convErr != nil || n < 1 || n > len(entries) {
			c.printf("Invalid selection.\n")
			continue
		}
		c.repost(ctx, entries[n-1])
	}
}

func (c *Controller) printEntries(entries []store.HistoryEntry) {
	for i, e := range entries {
		marker := ""
		if e.MediaRef != "" {
			marker = " [media]"
		}
		c.printf("%d. [%s]%s %s\n", i+1, e.Timestamp.Local().Format("2006-01-02 15:04"), marker, e.Text)
	}
}

func (c *Controller) searchHistory() {
	query, err := c.ask("Search for: ")
	if err != nil || query == "" {
		return
	}
	matches := c.history.Search(query)
	if len(matches) == 0 {
		c.printf("No posts matching %q.\n", query)
		return
	}
	c.printEntries(matches)
}

func (c *Controller) repost(ctx context.Context, entry store.HistoryEntry) {
	c.printf("Re-post:\n%s\n", entry.Text)
	confirm, err := c.ask("Post it again? (y/n): ")
	if err != nil || strings.ToLower(confirm) != "y" {
		return
	}
	result, err := c.pub.Publish(ctx, entry.Text, entry.MediaRef)
	if err != nil {
		c.report("re-post", err)
		return
	}
	if err := c.history.Append(store.HistoryEntry{Text: result.Text, MediaRef: entry.MediaRef}); err != nil {
		c.errlog.Append("history append", err)
	}
	c.printf("Posted successfully!\n")
}
