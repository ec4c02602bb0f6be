package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

const (
	ledgerSheet  = "Ledger"
	summarySheet = "Summary"
)

// ExcelWriter writes the ledger and its summary as an xlsx workbook.
type ExcelWriter struct {
	Currency string
}

func (w *ExcelWriter) Write(out io.Writer, txns []models.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return fmt.Errorf("failed to name ledger sheet: %w", err)
	}
	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(ledgerSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, txn := range txns {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			txn.Date,
			txn.Merchant,
			txn.Amount.InexactFloat64(),
			txn.Type.Label(),
			txn.Account,
			txn.Category,
		}
		if err := f.SetSheetRow(ledgerSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := w.writeSummary(f, Summarize(txns, w.Currency)); err != nil {
		return err
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *ExcelWriter) writeSummary(f *excelize.File, s Summary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	rows := [][]interface{}{
		{"Transactions", s.Count},
		{"Total Debit", s.Display(s.Debit)},
		{"Total Credit", s.Display(s.Credit)},
		{"Net", s.Display(s.Net)},
		{},
		{"Category", "Spend", "Count"},
	}
	for _, ct := range s.Categories {
		rows = append(rows, []interface{}{ct.Category, s.Display(ct.Amount), ct.Count})
	}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return nil
}
