package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPFeed retrieves the daily transaction batch from the bank's feed endpoint.
type HTTPFeed struct {
	url    string
	client *http.Client
}

// NewHTTPFeed constructs a feed client for the given endpoint. A nil client
// falls back to http.DefaultClient.
func NewHTTPFeed(url string, client *http.Client) *HTTPFeed {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFeed{url: url, client: client}
}

// FetchTransactions performs a GET against the feed endpoint and decodes the
// JSON transaction array.
func (f *HTTPFeed) FetchTransactions(ctx context.Context) ([]Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bank feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch bank feed: unexpected status %d", resp.StatusCode)
	}

	var txns []Transaction
	if err := json.NewDecoder(resp.Body).Decode(&txns); err != nil {
		return nil, fmt.Errorf("decode bank feed: %w", err)
	}
	return txns, nil
}
