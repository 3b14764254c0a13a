package allocation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/finops-tools/dailyalloc/internal/correlate"
)

// HTTPAllocator submits allocation batches to the platform's allocation API.
type HTTPAllocator struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAllocator constructs an allocator client for the given API base URL.
// A nil client falls back to http.DefaultClient.
func NewHTTPAllocator(baseURL string, client *http.Client) *HTTPAllocator {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPAllocator{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

type requestEntry struct {
	TransactionID string `json:"transactionId"`
	AcquisitionID string `json:"acquireId"`
}

// Allocate POSTs the batch to /allocations and verifies the response honors
// the one-outcome-per-entry contract: a missing, extra, duplicated, or
// unknown-status outcome turns the whole response into a *ServiceError.
func (a *HTTPAllocator) Allocate(ctx context.Context, m correlate.Map) ([]Outcome, error) {
	if m.Len() == 0 {
		return nil, fmt.Errorf("allocate: empty correlation map")
	}

	entries := make([]requestEntry, m.Len())
	submitted := make(map[string]struct{}, m.Len())
	for i, e := range m {
		entries[i] = requestEntry{TransactionID: e.TransactionID, AcquisitionID: e.AcquisitionID}
		submitted[e.TransactionID] = struct{}{}
	}

	body, err := json.Marshal(entries)
	if err != nil {
		return nil, &ServiceError{Err: fmt.Errorf("encode batch: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/allocations", bytes.NewReader(body))
	if err != nil {
		return nil, &ServiceError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &ServiceError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var outcomes []Outcome
	if err := json.NewDecoder(resp.Body).Decode(&outcomes); err != nil {
		return nil, &ServiceError{Err: fmt.Errorf("decode outcomes: %w", err)}
	}

	if len(outcomes) != m.Len() {
		return nil, &ServiceError{Err: fmt.Errorf("expected %d outcomes, got %d", m.Len(), len(outcomes))}
	}
	seen := make(map[string]struct{}, len(outcomes))
	for _, o := range outcomes {
		if _, ok := submitted[o.TransactionID]; !ok {
			return nil, &ServiceError{Err: fmt.Errorf("outcome for unsubmitted transaction %q", o.TransactionID)}
		}
		if _, dup := seen[o.TransactionID]; dup {
			return nil, &ServiceError{Err: fmt.Errorf("duplicate outcome for transaction %q", o.TransactionID)}
		}
		if o.Status != StatusSuccess && o.Status != StatusFailed {
			return nil, &ServiceError{Err: fmt.Errorf("unknown status %q for transaction %q", o.Status, o.TransactionID)}
		}
		seen[o.TransactionID] = struct{}{}
	}

	return outcomes, nil
}
