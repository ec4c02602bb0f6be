package extractor

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// TabularDocument is a CSV or spreadsheet export. Every sheet is one page
// whose table is the sheet's rows.
type TabularDocument struct {
	name  string
	path  string
	pages []Page
}

// NewTabularDocument builds an in-memory document, one page per sheet.
func NewTabularDocument(name string, sheets ...[][]string) *TabularDocument {
	doc := &TabularDocument{name: name}
	for i, rows := range sheets {
		doc.pages = append(doc.pages, &tabularPage{number: i + 1, rows: rows})
	}
	return doc
}

// OpenCSV reads a CSV export with gocsv's lazy-quote reader.
func OpenCSV(path string) (*TabularDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, filepath.Base(path), err)
	}
	defer f.Close()

	r := gocsv.LazyCSVReader(f)
	if cr, ok := r.(*csv.Reader); ok {
		// Exports carry preamble lines with fewer fields than the table.
		cr.FieldsPerRecord = -1
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, filepath.Base(path), err)
	}

	doc := NewTabularDocument(filepath.Base(path), rows)
	doc.path = path
	return doc, nil
}

// OpenExcel reads every sheet of a workbook.
func OpenExcel(path string) (*TabularDocument, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, filepath.Base(path), err)
	}
	defer f.Close()

	var sheets [][][]string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: sheet %q: %v", ErrOpen, filepath.Base(path), sheet, err)
		}
		sheets = append(sheets, rows)
	}

	doc := NewTabularDocument(filepath.Base(path), sheets...)
	doc.path = path
	return doc, nil
}

func (d *TabularDocument) Name() string  { return d.name }
func (d *TabularDocument) Path() string  { return d.path }
func (d *TabularDocument) Pages() []Page { return d.pages }
func (d *TabularDocument) Close() error  { return nil }

type tabularPage struct {
	number int
	rows   [][]string
}

func (p *tabularPage) Number() int { return p.number }

// Text joins each row's non-empty cells with spaces so the line patterns can
// still read exports whose headers are not recognised.
func (p *tabularPage) Text() (string, error) {
	lines := make([]string, 0, len(p.rows))
	for _, row := range p.rows {
		var parts []string
		for _, c := range row {
			if c = strings.TrimSpace(c); c != "" {
				parts = append(parts, c)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, " "))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (p *tabularPage) Table() (models.Grid, error) {
	if len(p.rows) == 0 {
		return nil, nil
	}
	return models.GridFromRows(p.rows), nil
}

func (p *tabularPage) Words() ([]models.Word, error) {
	return nil, nil
}
