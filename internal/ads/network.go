package ads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pixelpalette/backend/internal/entitlement"
)

// NetworkProvider talks to an external ad-serving endpoint over HTTP. The
// endpoint reports, per kind, whether an ad is available and whether the
// playback completed.
type NetworkProvider struct {
	baseURL string
	client  *http.Client
}

func NewNetworkProvider(baseURL string) *NetworkProvider {
	return &NetworkProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *NetworkProvider) Load(ctx context.Context, kind entitlement.Kind) error {
	resp, err := p.do(ctx, fmt.Sprintf("%s/ads/%s/load", p.baseURL, kind))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ad network load returned status %d", resp.StatusCode)
	}
	return nil
}

func (p *NetworkProvider) Show(ctx context.Context, kind entitlement.Kind) (bool, error) {
	resp, err := p.do(ctx, fmt.Sprintf("%s/ads/%s/show", p.baseURL, kind))
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("ad network show returned status %d", resp.StatusCode)
	}

	var body struct {
		Completed bool `json:"completed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decoding ad network response: %w", err)
	}
	return body.Completed, nil
}

func (p *NetworkProvider) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building ad network request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ad network: %w", err)
	}
	return resp, nil
}
