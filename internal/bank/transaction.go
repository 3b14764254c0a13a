package bank

import (
	"context"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used by the bank feed.
const DateLayout = "2006-01-02"

// Transaction is a single record from the daily bank feed. Records arrive
// as decoded and may be incomplete or malformed; they are validated when
// the batch is correlated, not here.
type Transaction struct {
	ID     string          `json:"transactionId"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

// Feed fetches the raw daily transaction batch from the bank.
type Feed interface {
	FetchTransactions(ctx context.Context) ([]Transaction, error)
}
