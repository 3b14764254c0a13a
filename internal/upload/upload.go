package upload

import (
	"context"

	"github.com/finops-tools/dailyalloc/internal/bank"
)

// StatusSuccess is the receipt status for a completed upload. Anything else
// is treated by the pipeline as a stage failure.
const StatusSuccess = "success"

// Receipt is the sink's acknowledgement of an upload.
type Receipt struct {
	Status    string `json:"status"`
	SheetID   string `json:"sheetId,omitempty"`
	RowsAdded int    `json:"rowsAdded,omitempty"`
}

// Sink receives the parsed transaction batch for ledger/spreadsheet upload.
type Sink interface {
	Upload(ctx context.Context, txns []bank.Transaction) (Receipt, error)
}
