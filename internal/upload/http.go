package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/finops-tools/dailyalloc/internal/bank"
)

// HTTPSink uploads the transaction batch to the ledger endpoint.
type HTTPSink struct {
	url    string
	client *http.Client
}

// NewHTTPSink constructs a sink client for the given endpoint. A nil client
// falls back to http.DefaultClient.
func NewHTTPSink(url string, client *http.Client) *HTTPSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSink{url: url, client: client}
}

// Upload POSTs the batch as JSON and decodes the receipt. The caller decides
// what to do with a non-success receipt status.
func (s *HTTPSink) Upload(ctx context.Context, txns []bank.Transaction) (Receipt, error) {
	body, err := json.Marshal(txns)
	if err != nil {
		return Receipt{}, fmt.Errorf("encode upload batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("upload transactions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Receipt{}, fmt.Errorf("upload transactions: unexpected status %d", resp.StatusCode)
	}

	var receipt Receipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return Receipt{}, fmt.Errorf("decode upload receipt: %w", err)
	}
	return receipt, nil
}
