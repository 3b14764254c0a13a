package allocation

import (
	"context"

	"github.com/finops-tools/dailyalloc/internal/correlate"
)

// StaticAllocator simulates a fully successful allocation service. Useful for
// tests and local runs without a live platform.
type StaticAllocator struct{}

// Allocate approves every entry with a synthetic customer id.
func (StaticAllocator) Allocate(_ context.Context, m correlate.Map) ([]Outcome, error) {
	outcomes := make([]Outcome, m.Len())
	for i, e := range m {
		outcomes[i] = Outcome{
			TransactionID: e.TransactionID,
			AcquisitionID: e.AcquisitionID,
			CustomerID:    "cust_" + e.AcquisitionID,
			Status:        StatusSuccess,
		}
	}
	return outcomes, nil
}
