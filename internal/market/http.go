package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Client fetches current asset values from an HTTP price endpoint. Calls
// are rate limited so a large alert set cannot hammer the upstream API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient constructs a rate-limited HTTP market source.
func NewClient(baseURL string, timeout time.Duration, ratePerSecond int) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(float64(ratePerSecond)), ratePerSecond),
	}
}

type priceResponse struct {
	Asset string   `json:"asset"`
	Value *float64 `json:"value"`
}

// CurrentValue queries GET {base}/price/{asset}. A 404 or a null value in
// the payload maps to ErrNoData.
func (c *Client) CurrentValue(ctx context.Context, asset string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("market rate limit: %w", err)
	}

	reqURL := fmt.Sprintf("%s/price/%s", c.baseURL, url.PathEscape(asset))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create market request for %s: %w", asset, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch value for %s: %w", asset, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, fmt.Errorf("asset %s: %w", asset, ErrNoData)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("market API returned status %d for %s", resp.StatusCode, asset)
	}

	var body priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode market response for %s: %w", asset, err)
	}
	if body.Value == nil {
		return 0, fmt.Errorf("asset %s: %w", asset, ErrNoData)
	}
	return *body.Value, nil
}
