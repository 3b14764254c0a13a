package allocation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finops-tools/dailyalloc/internal/correlate"
)

func batch() correlate.Map {
	return correlate.Map{
		{TransactionID: "txn_1", AcquisitionID: "acquire_txn_1"},
		{TransactionID: "txn_2", AcquisitionID: "acquire_txn_2"},
	}
}

func allocationServer(t *testing.T, respond func(entries []map[string]string) any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/allocations", r.URL.Path)

		var entries []map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&entries))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(respond(entries)))
	}))
}

func TestHTTPAllocatorAllocate(t *testing.T) {
	srv := allocationServer(t, func(entries []map[string]string) any {
		outcomes := make([]Outcome, len(entries))
		for i, e := range entries {
			outcomes[i] = Outcome{
				TransactionID: e["transactionId"],
				AcquisitionID: e["acquireId"],
				CustomerID:    "cust_" + e["acquireId"],
				Status:        StatusSuccess,
			}
		}
		return outcomes
	})
	defer srv.Close()

	alloc := NewHTTPAllocator(srv.URL, srv.Client())
	outcomes, err := alloc.Allocate(context.Background(), batch())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "txn_1", outcomes[0].TransactionID)
	assert.Equal(t, "cust_acquire_txn_1", outcomes[0].CustomerID)
	assert.Equal(t, StatusSuccess, outcomes[1].Status)
}

func TestHTTPAllocatorMixedStatuses(t *testing.T) {
	srv := allocationServer(t, func(entries []map[string]string) any {
		return []Outcome{
			{TransactionID: "txn_1", AcquisitionID: "acquire_txn_1", CustomerID: "cust_1", Status: StatusFailed},
			{TransactionID: "txn_2", AcquisitionID: "acquire_txn_2", CustomerID: "cust_2", Status: StatusSuccess},
		}
	})
	defer srv.Close()

	alloc := NewHTTPAllocator(srv.URL, srv.Client())
	outcomes, err := alloc.Allocate(context.Background(), batch())
	require.NoError(t, err, "business-level declines are outcomes, not errors")
	require.Len(t, outcomes, 2)
	assert.Equal(t, StatusFailed, outcomes[0].Status)
}

func TestHTTPAllocatorServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	alloc := NewHTTPAllocator(srv.URL, srv.Client())
	outcomes, err := alloc.Allocate(context.Background(), batch())

	var serr *ServiceError
	require.ErrorAs(t, err, &serr)
	assert.Nil(t, outcomes, "a service failure must return zero outcomes")
}

func TestHTTPAllocatorRejectsShortResponse(t *testing.T) {
	srv := allocationServer(t, func([]map[string]string) any {
		return []Outcome{
			{TransactionID: "txn_1", AcquisitionID: "acquire_txn_1", CustomerID: "cust_1", Status: StatusSuccess},
		}
	})
	defer srv.Close()

	alloc := NewHTTPAllocator(srv.URL, srv.Client())
	_, err := alloc.Allocate(context.Background(), batch())

	var serr *ServiceError
	require.ErrorAs(t, err, &serr)
}

func TestHTTPAllocatorRejectsDuplicateOutcome(t *testing.T) {
	srv := allocationServer(t, func([]map[string]string) any {
		return []Outcome{
			{TransactionID: "txn_1", AcquisitionID: "acquire_txn_1", CustomerID: "cust_1", Status: StatusSuccess},
			{TransactionID: "txn_1", AcquisitionID: "acquire_txn_1", CustomerID: "cust_1", Status: StatusSuccess},
		}
	})
	defer srv.Close()

	alloc := NewHTTPAllocator(srv.URL, srv.Client())
	_, err := alloc.Allocate(context.Background(), batch())

	var serr *ServiceError
	require.ErrorAs(t, err, &serr)
}

func TestHTTPAllocatorRejectsUnknownStatus(t *testing.T) {
	srv := allocationServer(t, func([]map[string]string) any {
		return []Outcome{
			{TransactionID: "txn_1", AcquisitionID: "acquire_txn_1", CustomerID: "cust_1", Status: "pending"},
			{TransactionID: "txn_2", AcquisitionID: "acquire_txn_2", CustomerID: "cust_2", Status: StatusSuccess},
		}
	})
	defer srv.Close()

	alloc := NewHTTPAllocator(srv.URL, srv.Client())
	_, err := alloc.Allocate(context.Background(), batch())

	var serr *ServiceError
	require.ErrorAs(t, err, &serr)
}

func TestHTTPAllocatorRejectsEmptyMap(t *testing.T) {
	alloc := NewHTTPAllocator("http://localhost:0", nil)
	_, err := alloc.Allocate(context.Background(), correlate.Map{})
	require.Error(t, err)
}

func TestStaticAllocatorApprovesEverything(t *testing.T) {
	outcomes, err := StaticAllocator{}.Allocate(context.Background(), batch())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.Equal(t, StatusSuccess, o.Status)
		assert.Equal(t, "cust_"+o.AcquisitionID, o.CustomerID)
	}
}
