package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/coopco/postpilot/internal/platform"
)

const (
	defaultRetryAttempts = 6
	defaultRetryDelay    = 5 * time.Second
)

// Gateway implements Publisher against the real posting platforms.
// Over-limit text is truncated silently with a warning (the alternative,
// rejecting, was considered; truncation keeps scheduled fires from
// failing on text that was valid when composed).
type Gateway struct {
	platforms *platform.Manager
	attempts  int
	delay     time.Duration
}

func NewGateway(platforms *platform.Manager) *Gateway {
	return &Gateway{
		platforms: platforms,
		attempts:  defaultRetryAttempts,
		delay:     defaultRetryDelay,
	}
}

// WithRetryPolicy overrides the transient-retry policy. Used by tests.
func (g *Gateway) WithRetryPolicy(attempts int, delay time.Duration) *Gateway {
	if attempts > 0 {
		g.attempts = attempts
	}
	g.delay = delay
	return g
}

// Publish validates and truncates text, uploads media when given,
// creates the post with transient-error retries, and fans out to any
// cross-post targets on success.
func (g *Gateway) Publish(ctx context.Context, text, mediaRef string) (*Result, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	text, truncated := Truncate(text)
	if truncated {
		slog.Warn("post text over platform limit, truncating", "limit", PlatformLimit)
	}

	var mediaIDs []string
	if mediaRef != "" {
		mediaID, err := g.uploadMedia(ctx, mediaRef)
		if err != nil {
			return nil, err
		}
		mediaIDs = append(mediaIDs, mediaID)
	}

	primary := g.platforms.Primary()
	postID, err := g.createWithRetry(ctx, primary, text, mediaIDs)
	if err != nil {
		return nil, err
	}
	slog.Info("post published", "platform", primary.Name(), "postID", postID, "mediaAttached", len(mediaIDs) > 0)

	g.platforms.CrossPost(ctx, text)

	return &Result{Text: text, MediaAttached: len(mediaIDs) > 0}, nil
}

// uploadMedia resolves mediaRef to bytes and uploads it. Any failure is
// terminal for the whole publish: no partial post is created.
func (g *Gateway) uploadMedia(ctx context.Context, mediaRef string) (string, error) {
	mimeType, err := MimeType(mediaRef)
	if err != nil {
		return "", err
	}

	uploader, ok := g.platforms.Primary().(platform.MediaUploader)
	if !ok {
		return "", fmt.Errorf("%w: platform %q does not accept media", ErrMediaUpload, g.platforms.Primary().Name())
	}

	data, err := os.ReadFile(mediaRef)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}

	mediaID, err := uploader.UploadMedia(ctx, data, mimeType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}
	return mediaID, nil
}

// createWithRetry retries transient upstream failures with a fixed
// delay, then surfaces ErrUpstreamUnavailable. Permanent upstream errors
// surface immediately.
func (g *Gateway) createWithRetry(ctx context.Context, client platform.Client, text string, mediaIDs []string) (string, error) {
	var lastErr error
	for i := 0; i < g.attempts; i++ {
		postID, err := client.CreatePost(ctx, text, mediaIDs)
		if err == nil {
			return postID, nil
		}
		if !platform.IsTransient(err) {
			return "", err
		}
		lastErr = err
		if i < g.attempts-1 {
			slog.Warn("platform overloaded, retrying", "attempt", i+1, "of", g.attempts, "delay", g.delay)
			select {
			case <-time.After(g.delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", fmt.Errorf("%w after %d attempts: %v", ErrUpstreamUnavailable, g.attempts, lastErr)
}
