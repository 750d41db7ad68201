package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client implements Publisher over the gateway's HTTP bridge. The
// interactive client process and its scheduler publish through this.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type createPostRequest struct {
	Status    string `json:"status"`
	MediaPath string `json:"mediaPath,omitempty"`
}

type createPostResponse struct {
	Message string  `json:"message"`
	Error   string  `json:"error,omitempty"`
	Result  *Result `json:"result,omitempty"`
}

// Publish POSTs /create-post and maps the response back onto the
// Publisher contract.
func (c *Client) Publish(ctx context.Context, text, mediaRef string) (*Result, error) {
	body, err := json.Marshal(createPostRequest{Status: text, MediaPath: mediaRef})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create-post", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	var out createPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway error: %s", out.Error)
	}
	if out.Result != nil {
		return out.Result, nil
	}
	return &Result{Text: text, MediaAttached: mediaRef != ""}, nil
}
