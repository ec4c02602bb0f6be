package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// Header aliases, matched against the normalized header text.
var (
	dateHeaders      = []string{"date", "transaction date", "txn date"}
	merchantHeaders  = []string{"description", "merchant", "narration"}
	amountHeaders    = []string{"amount"}
	debitHeaders     = []string{"debit"}
	creditHeaders    = []string{"credit"}
	indicatorHeaders = []string{"type", "dr/cr", "cr/dr", "debit/credit", "indicator", "txn type", "transaction type"}
)

// headerSearchDepth bounds how far down a grid the header row may sit.
const headerSearchDepth = 10

var headerSuffix = regexp.MustCompile(`\s*\(.*\)\s*$`)

type amountColumn struct {
	index int
	kind  models.Kind
}

type columnMap struct {
	date      int
	merchant  int
	indicator int
	amounts   []amountColumn
}

func (c columnMap) complete() bool {
	return c.date >= 0 && c.merchant >= 0 && len(c.amounts) > 0
}

// TableExtractor maps detected table rows to transactions by header name.
type TableExtractor struct {
	// NormalizeDates converts table dates to YYYY-MM-DD; otherwise they are kept verbatim.
	NormalizeDates bool
	ReferenceYear  int
}

// Extract reads rows under the first recognised header row. Rows missing a
// date, merchant or amount are skipped.
func (e *TableExtractor) Extract(grid models.Grid) Result {
	var res Result
	headerRow := -1
	var cols columnMap
	for i := 0; i < len(grid) && i < headerSearchDepth; i++ {
		if cm := mapColumns(grid[i]); cm.complete() {
			headerRow, cols = i, cm
			break
		}
	}
	if headerRow < 0 {
		return res
	}

	for _, row := range grid[headerRow+1:] {
		res.Candidates++
		if txn, ok := e.rowToTransaction(row, cols); ok {
			res.Rows = append(res.Rows, txn)
		}
	}
	return res
}

func (e *TableExtractor) rowToTransaction(row []*string, cols columnMap) (models.Transaction, bool) {
	rawDate := cellText(row, cols.date)
	merchant := CleanMerchant(cellText(row, cols.merchant))
	if rawDate == "" || merchant == "" {
		return models.Transaction{}, false
	}

	amount, kind, ok := pickAmount(row, cols.amounts)
	if !ok {
		return models.Transaction{}, false
	}
	if cols.indicator >= 0 {
		switch models.ParseKind(cellText(row, cols.indicator)) {
		case models.KindCredit:
			amount, kind = amount.Abs().Neg(), models.KindCredit
		case models.KindDebit:
			amount, kind = amount.Abs(), models.KindDebit
		}
	}

	txn := models.Transaction{
		Date:     rawDate,
		RawDate:  rawDate,
		Merchant: merchant,
		Amount:   amount,
		Type:     ResolveKind(amount, kind),
		Source:   "table",
	}
	if e.NormalizeDates {
		txn.Date = ParseDate(rawDate, e.ReferenceYear)
	}
	return txn, true
}

// pickAmount takes the first non-empty amount cell in header order. Zero
// cells only count when every amount column is zero, so a "0.00" debit does
// not hide the credit beside it.
func pickAmount(row []*string, columns []amountColumn) (decimal.Decimal, models.Kind, bool) {
	type parsed struct {
		amount decimal.Decimal
		kind   models.Kind
	}
	var zero *parsed
	for _, col := range columns {
		text := cellText(row, col.index)
		if text == "" || text == "-" {
			continue
		}
		a, k, err := ParseAmount(text)
		if err != nil {
			continue
		}
		switch col.kind {
		case models.KindCredit:
			a, k = a.Abs().Neg(), models.KindCredit
		case models.KindDebit:
			a, k = a.Abs(), models.KindDebit
		}
		if a.IsZero() {
			if zero == nil {
				zero = &parsed{a, k}
			}
			continue
		}
		return a, k, true
	}
	if zero != nil {
		return zero.amount, zero.kind, true
	}
	return decimal.Zero, models.KindUnknown, false
}

func mapColumns(headers []*string) columnMap {
	cm := columnMap{date: -1, merchant: -1, indicator: -1}
	for i, cell := range headers {
		if cell == nil {
			continue
		}
		h := normalizeHeader(*cell)
		switch {
		case cm.date < 0 && oneOf(h, dateHeaders):
			cm.date = i
		case cm.merchant < 0 && oneOf(h, merchantHeaders):
			cm.merchant = i
		case cm.indicator < 0 && oneOf(h, indicatorHeaders):
			cm.indicator = i
		case oneOf(h, amountHeaders):
			cm.amounts = append(cm.amounts, amountColumn{index: i, kind: models.KindUnknown})
		case oneOf(h, debitHeaders):
			cm.amounts = append(cm.amounts, amountColumn{index: i, kind: models.KindDebit})
		case oneOf(h, creditHeaders):
			cm.amounts = append(cm.amounts, amountColumn{index: i, kind: models.KindCredit})
		}
	}
	return cm
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = headerSuffix.ReplaceAllString(s, "")
	s = strings.TrimRight(s, ".:")
	return whitespace.ReplaceAllString(s, " ")
}

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

func cellText(row []*string, i int) string {
	if i < 0 || i >= len(row) || row[i] == nil {
		return ""
	}
	return strings.TrimSpace(*row[i])
}
