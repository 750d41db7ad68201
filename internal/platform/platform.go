package platform

import (
	"context"
	"errors"
)

// ErrOverloaded marks a transient upstream condition (429/5xx-class).
// The publisher gateway retries these; everything else surfaces
// immediately.
var ErrOverloaded = errors.New("platform overloaded")

// Client is a posting target.
type Client interface {
	Name() string
	CreatePost(ctx context.Context, text string, mediaIDs []string) (postID string, err error)
}

// MediaUploader is implemented by platforms that accept media uploads.
type MediaUploader interface {
	UploadMedia(ctx context.Context, data []byte, mimeType string) (mediaID string, err error)
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	return errors.Is(err, ErrOverloaded)
}
