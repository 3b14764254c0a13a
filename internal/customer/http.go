package customer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// HTTPResolver resolves customers against the platform's lookup API.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

// NewHTTPResolver constructs a resolver for the given API base URL. A nil
// client falls back to http.DefaultClient.
func NewHTTPResolver(baseURL string, client *http.Client) *HTTPResolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPResolver{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

// Resolve performs a GET against /customers/{acquisitionID}. A 404 maps to
// ErrNotFound; any other failure is an *UpstreamError.
func (r *HTTPResolver) Resolve(ctx context.Context, acquisitionID string) (Record, error) {
	endpoint := fmt.Sprintf("%s/customers/%s", r.baseURL, url.PathEscape(acquisitionID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Record{}, &UpstreamError{Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Record{}, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Record{}, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return Record{}, &UpstreamError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var rec Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return Record{}, &UpstreamError{Err: fmt.Errorf("decode customer: %w", err)}
	}
	return rec, nil
}
