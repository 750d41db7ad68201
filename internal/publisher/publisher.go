package publisher

import (
	"context"
	"errors"
)

// PlatformLimit is the maximum post length in characters.
const PlatformLimit = 280

var (
	// ErrUnsupportedMedia means the media file extension maps to no
	// known content type.
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// ErrMediaUpload means the media upload failed; no post is created.
	ErrMediaUpload = errors.New("media upload failed")

	// ErrUpstreamUnavailable is returned once transient-failure retries
	// against the posting platform are exhausted.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrEmptyText rejects posts with no text.
	ErrEmptyText = errors.New("post text is empty")
)

// Result describes a successful publish.
type Result struct {
	Text          string `json:"text"`
	MediaAttached bool   `json:"mediaAttached"`
}

// Publisher is the one stable publish contract shared by the interactive
// console, the scheduler, and the MCP tool surface.
type Publisher interface {
	Publish(ctx context.Context, text, mediaRef string) (*Result, error)
}

// Truncate enforces the platform limit, counting runes. Returns the
// possibly-shortened text and whether truncation happened.
func Truncate(text string) (string, bool) {
	runes := []rune(text)
	if len(runes) <= PlatformLimit {
		return text, false
	}
	return string(runes[:PlatformLimit]), true
}
