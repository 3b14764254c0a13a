package correlate

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finops-tools/dailyalloc/internal/bank"
)

func txn(id string, amount int64, date string) bank.Transaction {
	return bank.Transaction{ID: id, Amount: decimal.NewFromInt(amount), Date: date}
}

func TestTransactionsDerivesAcquisitionIDs(t *testing.T) {
	m, err := Transactions([]bank.Transaction{txn("txn_1", 1000, "2025-06-16")})
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())
	assert.Equal(t, "txn_1", m[0].TransactionID)
	assert.Equal(t, "acquire_txn_1", m[0].AcquisitionID)
}

func TestTransactionsCoversEveryInputExactlyOnce(t *testing.T) {
	var txns []bank.Transaction
	for i := 0; i < 25; i++ {
		txns = append(txns, txn(fmt.Sprintf("txn_%d", i), int64(100+i), "2025-06-16"))
	}

	m, err := Transactions(txns)
	require.NoError(t, err)
	require.Equal(t, len(txns), m.Len())

	seen := make(map[string]int)
	for i, e := range m {
		assert.Equal(t, txns[i].ID, e.TransactionID, "order must be preserved")
		seen[e.TransactionID]++
	}
	for _, in := range txns {
		assert.Equal(t, 1, seen[in.ID], "transaction %s must appear exactly once", in.ID)
	}
}

func TestTransactionsIsDeterministic(t *testing.T) {
	txns := []bank.Transaction{
		txn("txn_a", 500, "2025-06-16"),
		txn("txn_b", 800, "2025-06-17"),
	}

	first, err := Transactions(txns)
	require.NoError(t, err)
	second, err := Transactions(txns)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTransactionsValidation(t *testing.T) {
	cases := []struct {
		name  string
		input bank.Transaction
		field string
	}{
		{"missing transaction id", bank.Transaction{Amount: decimal.NewFromInt(500)}, "transactionId"},
		{"zero amount", txn("txn_1", 0, "2025-06-16"), "amount"},
		{"negative amount", bank.Transaction{ID: "txn_1", Amount: decimal.NewFromInt(-10), Date: "2025-06-16"}, "amount"},
		{"missing date", bank.Transaction{ID: "txn_1", Amount: decimal.NewFromInt(10)}, "date"},
		{"malformed date", txn("txn_1", 1000, "bad-date"), "date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Transactions([]bank.Transaction{tc.input})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, 0, verr.Index)
		})
	}
}

func TestTransactionsRejectsDuplicateIDs(t *testing.T) {
	_, err := Transactions([]bank.Transaction{
		txn("txn_1", 1000, "2025-06-16"),
		txn("txn_1", 2000, "2025-06-16"),
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Index)
	assert.Equal(t, "transactionId", verr.Field)
}

func TestSubsetPreservesOrder(t *testing.T) {
	m, err := Transactions([]bank.Transaction{
		txn("txn_1", 100, "2025-06-16"),
		txn("txn_2", 200, "2025-06-16"),
		txn("txn_3", 300, "2025-06-16"),
	})
	require.NoError(t, err)

	sub := m.Subset(func(e Entry) bool { return e.TransactionID != "txn_2" })
	require.Equal(t, 2, sub.Len())
	assert.Equal(t, []string{"txn_1", "txn_3"}, sub.TransactionIDs())
}
