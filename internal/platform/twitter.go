package platform

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/coopco/postpilot/internal/config"
)

const (
	defaultTweetURL  = "https://api.twitter.com/2/tweets"
	defaultUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
)

// TwitterClient posts to X/Twitter: media upload via the v1.1 endpoint,
// tweet creation via v2. Credentials are attached as opaque headers;
// signing mechanics live outside this package's concern.
type TwitterClient struct {
	httpClient *http.Client
	bearer     string
	tweetURL   string
	uploadURL  string
}

func NewTwitterClient(cfg config.TwitterConfig) *TwitterClient {
	return &TwitterClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		bearer:     cfg.BearerToken,
		tweetURL:   defaultTweetURL,
		uploadURL:  defaultUploadURL,
	}
}

// WithEndpoints overrides the API endpoints. Used by tests.
func (c *TwitterClient) WithEndpoints(tweetURL, uploadURL string) *TwitterClient {
	c.tweetURL = tweetURL
	c.uploadURL = uploadURL
	return c
}

func (c *TwitterClient) Name() string { return "twitter" }

// UploadMedia uploads raw media bytes and returns the platform media ID.
func (c *TwitterClient) UploadMedia(ctx context.Context, data []byte, mimeType string) (string, error) {
	form := url.Values{}
	form.Set("media_data", base64.StdEncoding.EncodeToString(data))
	form.Set("media_category", categoryFor(mimeType))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.bearer)

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("media upload failed: %w", err)
	}

	mediaID := gjson.GetBytes(body, "media_id_string").String()
	if mediaID == "" {
		return "", fmt.Errorf("media upload response missing media_id_string")
	}
	return mediaID, nil
}

// CreatePost creates a tweet with optional attached media and returns
// the new post ID.
func (c *TwitterClient) CreatePost(ctx context.Context, text string, mediaIDs []string) (string, error) {
	payload, _ := sjson.Set("", "text", text)
	if len(mediaIDs) > 0 {
		payload, _ = sjson.Set(payload, "media.media_ids", mediaIDs)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tweetURL, strings.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build tweet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.bearer)

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("tweet creation failed: %w", err)
	}

	postID := gjson.GetBytes(body, "data.id").String()
	if postID == "" {
		return "", fmt.Errorf("tweet response missing data.id")
	}
	return postID, nil
}

// do executes the request and maps upstream status codes onto the error
// taxonomy: 429/5xx are ErrOverloaded (retryable), other non-2xx are
// permanent.
func (c *TwitterClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d: %s", ErrOverloaded, resp.StatusCode, summarize(body))
	default:
		return nil, fmt.Errorf("upstream rejected request: status %d: %s", resp.StatusCode, summarize(body))
	}
}

func categoryFor(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "video/"):
		return "tweet_video"
	case mimeType == "image/gif":
		return "tweet_gif"
	default:
		return "tweet_image"
	}
}

func summarize(body []byte) string {
	const max = 200
	s := string(body)
	if len(s) > max {
		return s[:max]
	}
	return s
}
