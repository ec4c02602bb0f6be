package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// Columns is the stable ledger column set.
var Columns = []string{"Date", "Merchant", "Amount", "Type", "Account", "Category"}

type ledgerRow struct {
	Date     string `csv:"Date"`
	Merchant string `csv:"Merchant"`
	Amount   string `csv:"Amount"`
	Type     string `csv:"Type"`
	Account  string `csv:"Account"`
	Category string `csv:"Category"`
}

func toRows(txns []models.Transaction) []*ledgerRow {
	rows := make([]*ledgerRow, 0, len(txns))
	for _, txn := range txns {
		rows = append(rows, &ledgerRow{
			Date:     txn.Date,
			Merchant: txn.Merchant,
			Amount:   txn.Amount.StringFixed(2),
			Type:     txn.Type.Label(),
			Account:  txn.Account,
			Category: txn.Category,
		})
	}
	return rows
}

// CSVWriter writes the ledger in CSV format.
type CSVWriter struct {
	// IncludeSummary prepends "# " comment rows with the ledger totals.
	IncludeSummary bool
	Currency       string
}

// WriteToFile writes the ledger to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, txns []models.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, txns)
}

// Write writes the ledger in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, txns []models.Transaction) error {
	writer := gocsv.NewSafeCSVWriter(csv.NewWriter(out))

	if w.IncludeSummary {
		s := Summarize(txns, w.Currency)
		meta := [][]string{
			{"# Transactions", fmt.Sprint(s.Count)},
			{"# Total Debit", s.Debit.StringFixed(2)},
			{"# Total Credit", s.Credit.StringFixed(2)},
			{"# Net", s.Net.StringFixed(2)},
		}
		for _, row := range meta {
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV summary: %w", err)
			}
		}
	}

	rows := toRows(txns)
	if len(rows) == 0 {
		if err := writer.Write(Columns); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
		writer.Flush()
		return writer.Error()
	}
	if err := gocsv.MarshalCSV(rows, writer); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
