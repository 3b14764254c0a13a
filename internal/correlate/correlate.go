// Package correlate derives acquisition identifiers for a batch of bank
// transactions. Correlation is a pure function: the same input batch always
// produces the same map, and no external service is consulted.
package correlate

import (
	"fmt"
	"time"

	"github.com/finops-tools/dailyalloc/internal/bank"
)

const acquisitionPrefix = "acquire_"

// Entry pairs a bank transaction with its derived acquisition identifier.
type Entry struct {
	TransactionID string
	AcquisitionID string
}

// Map is an order-preserving correlation from transaction id to acquisition
// id. It holds exactly one entry per input transaction and is never mutated
// after construction.
type Map []Entry

// Len reports the number of correlated transactions.
func (m Map) Len() int { return len(m) }

// TransactionIDs returns the transaction ids in batch order.
func (m Map) TransactionIDs() []string {
	ids := make([]string, len(m))
	for i, e := range m {
		ids[i] = e.TransactionID
	}
	return ids
}

// Subset returns the entries for which keep reports true, preserving order.
func (m Map) Subset(keep func(Entry) bool) Map {
	out := make(Map, 0, len(m))
	for _, e := range m {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// ValidationError reports a malformed transaction record in the input batch.
// It is fatal to the run; the data must be fixed upstream before retrying.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("transaction %d: %s %s", e.Index, e.Field, e.Reason)
}

// Transactions validates the batch and derives one acquisition identifier per
// transaction. It fails with a *ValidationError if any record is missing a
// required field, carries a non-positive amount, has a malformed date, or
// reuses a transaction id already seen in the batch.
func Transactions(txns []bank.Transaction) (Map, error) {
	seen := make(map[string]struct{}, len(txns))
	derived := make(map[string]struct{}, len(txns))
	m := make(Map, 0, len(txns))

	for i, txn := range txns {
		if txn.ID == "" {
			return nil, &ValidationError{Index: i, Field: "transactionId", Reason: "is required"}
		}
		if _, dup := seen[txn.ID]; dup {
			return nil, &ValidationError{Index: i, Field: "transactionId", Reason: fmt.Sprintf("%q appears more than once", txn.ID)}
		}
		if !txn.Amount.IsPositive() {
			return nil, &ValidationError{Index: i, Field: "amount", Reason: "must be positive"}
		}
		if txn.Date == "" {
			return nil, &ValidationError{Index: i, Field: "date", Reason: "is required"}
		}
		if _, err := time.Parse(bank.DateLayout, txn.Date); err != nil {
			return nil, &ValidationError{Index: i, Field: "date", Reason: fmt.Sprintf("%q is not a calendar date", txn.Date)}
		}

		acquisitionID := acquisitionPrefix + txn.ID
		if _, collision := derived[acquisitionID]; collision {
			// Unreachable once transaction ids are unique; a collision here
			// means the derivation itself is broken.
			return nil, fmt.Errorf("acquisition id collision on %q", acquisitionID)
		}

		seen[txn.ID] = struct{}{}
		derived[acquisitionID] = struct{}{}
		m = append(m, Entry{TransactionID: txn.ID, AcquisitionID: acquisitionID})
	}

	return m, nil
}
