package ledger

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"smartpark/ledger-service/internal/models"
	"smartpark/ledger-service/internal/store"

	"github.com/shopspring/decimal"
)

// TransactionFilter narrows history by entry day and category. Zero values
// leave a bound open. Days are compared in the location of From and To.
type TransactionFilter struct {
	From     time.Time
	To       time.Time
	Category string
}

func (f TransactionFilter) matches(txn models.Transaction) bool {
	if f.Category != "" && txn.Category != f.Category {
		return false
	}
	if !f.From.IsZero() && txn.EntryTime.Before(startOfDay(f.From)) {
		return false
	}
	if !f.To.IsZero() && !txn.EntryTime.Before(startOfDay(f.To).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// Transactions returns closed records in scope, newest first.
func (l *Ledger) Transactions(scope Scope, filter TransactionFilter) []models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Transaction, 0)
	for i := len(l.transactions) - 1; i >= 0; i-- {
		txn := l.transactions[i]
		if scope.includes(txn.BranchID) && filter.matches(txn) {
			out = append(out, cloneTransaction(txn))
		}
	}
	return out
}

func (l *Ledger) Transaction(scope Scope, transactionID string) (models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, txn := range l.transactions {
		if txn.TransactionID == transactionID && scope.includes(txn.BranchID) {
			return cloneTransaction(txn), nil
		}
	}
	return models.Transaction{}, store.ErrTransactionNotFound
}

type Summary struct {
	TotalRevenue           decimal.Decimal `json:"total_revenue"`
	TransactionCount       int             `json:"transaction_count"`
	AverageDurationMinutes int64           `json:"average_duration_minutes"`
}

// Summarize totals revenue and averages duration, rounded to whole minutes.
func Summarize(txns []models.Transaction) Summary {
	summary := Summary{TotalRevenue: decimal.Zero, TransactionCount: len(txns)}
	if len(txns) == 0 {
		return summary
	}
	var minutes int64
	for _, txn := range txns {
		summary.TotalRevenue = summary.TotalRevenue.Add(txn.FinalAmount)
		minutes += txn.DurationMinutes
	}
	summary.AverageDurationMinutes = decimal.NewFromInt(minutes).
		Div(decimal.NewFromInt(int64(len(txns)))).
		Round(0).
		IntPart()
	return summary
}

var csvHeader = []string{"Transaction ID", "Plate Number", "Type", "Entry Time", "Exit Time", "Duration (mins)", "Amount"}

// WriteCSV exports transactions in the order given.
func WriteCSV(w io.Writer, txns []models.Transaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, txn := range txns {
		record := []string{
			txn.TransactionID,
			txn.PlateNumber,
			txn.Category,
			txn.EntryTime.Format(time.RFC3339),
			txn.ExitTime.Format(time.RFC3339),
			strconv.FormatInt(txn.DurationMinutes, 10),
			txn.FinalAmount.StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
