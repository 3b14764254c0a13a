package allocation

import (
	"context"
	"fmt"

	"github.com/finops-tools/dailyalloc/internal/correlate"
)

// Status labels the result of a single allocation entry.
type Status string

const (
	// StatusSuccess means funds were credited to the customer account.
	StatusSuccess Status = "success"
	// StatusFailed is a business-level decline (insufficient funds, duplicate
	// transaction). It is expected data, not a fault.
	StatusFailed Status = "failed"
)

// Outcome is the per-transaction result of an allocation batch. The batch is
// never atomic: each outcome carries its own status.
type Outcome struct {
	TransactionID string `json:"transactionId"`
	AcquisitionID string `json:"acquireId"`
	CustomerID    string `json:"customerId"`
	Status        Status `json:"status"`
}

// Allocator requests fund allocation for a correlated batch. Implementations
// must return exactly one outcome per submitted entry, or a *ServiceError and
// zero outcomes when the call itself cannot be completed. The submitted
// transaction ids double as upstream idempotency keys, so re-submitting the
// same map after a transport failure is safe.
type Allocator interface {
	Allocate(ctx context.Context, m correlate.Map) ([]Outcome, error)
}

// ServiceError indicates the allocation call itself failed and no outcomes
// were produced. Distinct from StatusFailed outcomes, which are normal
// results.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("allocation service: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }
