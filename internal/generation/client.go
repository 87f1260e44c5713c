package generation

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pixelpalette/backend/internal/config"
)

// Image is a fetched render.
type Image struct {
	Data        []byte
	ContentType string
	URL         string
}

// Client fetches renders from the upstream image endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.GenerationConfig) *Client {
	return &Client{
		baseURL: cfg.EndpointURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Fetch performs the upstream GET and returns the image bytes. The caller
// only debits credits after this succeeds.
func (c *Client) Fetch(ctx context.Context, r *Request) (*Image, error) {
	u := BuildURL(c.baseURL, r)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building generation request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling generation endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation endpoint returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading generated image: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return &Image{Data: data, ContentType: contentType, URL: u}, nil
}
