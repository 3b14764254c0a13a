package customer

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound signals that no customer exists for an acquisition identifier.
// Absence is an expected outcome for some identifiers and must not abort a
// run; callers distinguish it with errors.Is.
var ErrNotFound = errors.New("customer not found")

// Record identifies the customer resolved for an acquisition identifier.
type Record struct {
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
}

// Resolver looks up the customer behind an acquisition identifier.
type Resolver interface {
	Resolve(ctx context.Context, acquisitionID string) (Record, error)
}

// UpstreamError indicates the lookup service itself failed (transport error,
// unexpected status, undecodable body). Unlike ErrNotFound it aborts the run;
// re-running the whole pipeline is safe.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("customer lookup: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
