package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/coopco/postpilot/internal/providers"
	"github.com/coopco/postpilot/internal/publisher"
	"github.com/coopco/postpilot/internal/scheduler"
	"github.com/coopco/postpilot/internal/session"
	"github.com/coopco/postpilot/internal/store"
)

// Controller drives the interactive menu loop. It is strictly
// sequential: one question, one answer, blocking on user input.
type Controller struct {
	in        *bufio.Reader
	out       io.Writer
	text      *providers.TextClient
	pub       publisher.Publisher
	history   *store.HistoryStore
	sched     *scheduler.Service
	recurring *scheduler.Recurring
	errlog    *store.ErrorLog
	sessions  *session.Manager
}

type Config struct {
	In        io.Reader
	Out       io.Writer
	Text      *providers.TextClient
	Publisher publisher.Publisher
	History   *store.HistoryStore
	Scheduler *scheduler.Service
	Recurring *scheduler.Recurring
	ErrorLog  *store.ErrorLog
	Sessions  *session.Manager
}

func New(cfg Config) *Controller {
	return &Controller{
		in:        bufio.NewReader(cfg.In),
		out:       cfg.Out,
		text:      cfg.Text,
		pub:       cfg.Publisher,
		history:   cfg.History,
		sched:     cfg.Scheduler,
		recurring: cfg.Recurring,
		errlog:    cfg.ErrorLog,
		sessions:  cfg.Sessions,
	}
}

// Run loops on the main menu until the user quits or input ends.
func (c *Controller) Run(ctx context.Context) error {
	for {
		choice, err := c.ask("What would you like to do? (1) Post, (2) Chat with AI, (3) Post history, (4) Scheduled posts, (q) Quit: ")
		if err != nil {
			return nil // EOF: treat like quit
		}
		switch strings.ToLower(strings.TrimSpace(choice)) {
		case "1":
			c.composeMode(ctx)
		case "2":
			c.chatMode(ctx)
		case "3":
			c.historyMode(ctx)
		case "4":
			c.scheduledMode(ctx)
		case "q":
			c.printf("Goodbye!\n")
			return nil
		default:
			c.printf("Invalid option. Please choose 1, 2, 3, 4, or q.\n")
		}
	}
}

// ask prints the prompt and reads one line.
func (c *Controller) ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Controller) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// report prints a failure, records it durably, and lets the caller fall
// back to the menu. Failures never crash the session.
func (c *Controller) report(context string, err error) {
	c.errlog.Append(context, err)
	c.printf("Error: %v\n", err)
}

// resolveMediaPath loops until the user gives an existing file or skips
// by entering nothing.
func (c *Controller) resolveMediaPath() string {
	for {
		path, err := c.ask("Enter the file path for the image, GIF, or video: ")
		if err != nil || path == "" {
			return ""
		}
		abs, absErr := filepath.Abs(path)
		if absErr == nil {
			path = abs
		}
		if _, statErr := os.Stat(path); statErr == nil {
			return path
		}
		c.printf("File does not exist. Please enter a valid file path or press Enter to skip attaching media.\n")
	}
}

// suggestTags asks the model for hashtags/mentions for the drafted
// post. Suggestion failures are non-fatal; the post goes out bare.
func (c *Controller) suggestTags(ctx context.Context, postText string) string {
	prompt := fmt.Sprintf("Suggest up to 3 relevant hashtags and up to 2 relevant mentions for this post. Only output a comma-separated list (e.g., #AI, #Tech, @OpenAI):\n%s", postText)
	suggestion, err := c.text.Generate(ctx, prompt)
	if err != nil {
		c.errlog.Append("hashtag suggestion", err)
		return ""
	}
	// Keep only the first line in case the model adds commentary.
	if i := strings.IndexByte(suggestion, '\n'); i >= 0 {
		suggestion = suggestion[:i]
	}
	return strings.TrimSpace(suggestion)
}

// combineWithTags appends tags to text. When the combination overflows
// the platform limit the body is shortened and the tags kept whole, so
// no truncated hashtag fragment is ever posted.
func combineWithTags(text, tags string) string {
	if tags == "" {
		return text
	}
	combined := text + " " + tags
	if len([]rune(combined)) <= publisher.PlatformLimit {
		return strings.TrimSpace(combined)
	}
	keep := publisher.PlatformLimit - len([]rune(tags)) - 1
	if keep < 0 {
		keep = 0
	}
	body := strings.TrimSpace(string([]rune(text)[:keep]))
	return strings.TrimSpace(body + " " + tags)
}

// ErrCancelled is returned internally when the user backs out of a
// compose loop.
var errCancelled = errors.New("cancelled")
