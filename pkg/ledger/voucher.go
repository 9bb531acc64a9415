package ledger

import (
	"time"

	"github.com/naveenspark/cbdemo/pkg/domain"
)

// HistoryRow is one voucher transaction as listed to the holder.
type HistoryRow struct {
	When   time.Time
	Amount int64
	Record string
}

// VoucherHistory lists the transactions of a voucher asset oldest first.
func VoucherHistory(history []domain.Transaction) []HistoryRow {
	rows := make([]HistoryRow, 0, len(history))
	for _, tx := range history {
		rows = append(rows, HistoryRow{When: tx.Timestamp.Time, Amount: tx.Amount, Record: tx.Record})
	}
	return rows
}
