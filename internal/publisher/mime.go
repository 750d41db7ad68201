package publisher

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MimeType maps a media file's extension to its content type,
// case-insensitively. Unrecognized extensions are ErrUnsupportedMedia.
func MimeType(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg", nil
	case "png":
		return "image/png", nil
	case "gif":
		return "image/gif", nil
	case "mp4", "m4v":
		return "video/mp4", nil
	case "mov":
		return "video/quicktime", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMedia, ext)
	}
}
