package extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// pdftotextTimeout bounds the per-page poppler fallback.
const pdftotextTimeout = 30 * time.Second

// PDFDocument is a born-digital or scanned PDF read with ledongthuc/pdf.
type PDFDocument struct {
	path   string
	file   *os.File
	reader *pdf.Reader
	pages  []Page
}

// OpenPDF opens a PDF. Malformed files that make the library panic are
// reported as open errors.
func OpenPDF(path string) (doc *PDFDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: PDF library crashed: %v", ErrOpen, filepath.Base(path), r)
		}
	}()

	f, r, openErr := pdf.Open(path)
	if openErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, filepath.Base(path), openErr)
	}

	doc = &PDFDocument{path: path, file: f, reader: r}
	for i := 1; i <= r.NumPage(); i++ {
		doc.pages = append(doc.pages, &pdfPage{doc: doc, number: i})
	}
	return doc, nil
}

func (d *PDFDocument) Name() string  { return filepath.Base(d.path) }
func (d *PDFDocument) Path() string  { return d.path }
func (d *PDFDocument) Pages() []Page { return d.pages }

func (d *PDFDocument) Close() error {
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}

type pdfPage struct {
	doc    *PDFDocument
	number int

	words    []models.Word
	wordsErr error
	wordsSet bool
}

func (p *pdfPage) Number() int { return p.number }

func (p *pdfPage) page() (pdf.Page, error) {
	page := p.doc.reader.Page(p.number)
	if page.V.IsNull() {
		return page, fmt.Errorf("page %d missing from document", p.number)
	}
	return page, nil
}

// Text returns the page text row by row. When the library output is not
// readable it tries rows rebuilt from glyph positions, then pdftotext.
// Unreadable text is returned as empty so later strategies get a chance.
func (p *pdfPage) Text() (text string, err error) {
	defer recoverInto(&err, p.number, "text")

	page, err := p.page()
	if err != nil {
		return "", err
	}

	byRow := textByRow(page)
	if isReadableText(byRow) {
		return byRow, nil
	}

	if words, werr := p.Words(); werr == nil {
		if byWords := linesFromWords(words); isReadableText(byWords) {
			return byWords, nil
		}
	}

	if popplerText, perr := pdftotextPage(p.doc.path, p.number); perr == nil && looksLikeStatement(popplerText) {
		return popplerText, nil
	}

	if textQuality(byRow) > 0.6 {
		return byRow, nil
	}
	return "", nil
}

// Words returns positioned words with a top-left origin.
func (p *pdfPage) Words() (words []models.Word, err error) {
	if p.wordsSet {
		return p.words, p.wordsErr
	}
	defer func() {
		p.words, p.wordsErr, p.wordsSet = words, err, true
	}()
	defer recoverInto(&err, p.number, "words")

	page, err := p.page()
	if err != nil {
		return nil, err
	}
	return wordsFromGlyphs(page.Content().Text, pageTop(page)), nil
}

// Table looks for a header-anchored table among the page words.
func (p *pdfPage) Table() (grid models.Grid, err error) {
	defer recoverInto(&err, p.number, "table")

	words, err := p.Words()
	if err != nil {
		return nil, err
	}
	return detectTable(words), nil
}

func recoverInto(err *error, page int, what string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("page %d %s: PDF library crashed: %v", page, what, r)
	}
}

func textByRow(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return ""
	}
	var lines []string
	for _, row := range rows {
		var parts []string
		for _, word := range row.Content {
			parts = append(parts, word.S)
		}
		line := strings.TrimSpace(strings.Join(parts, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

const defaultPageTop = 792.0

// pageTop returns the upper edge of the page MediaBox, walking up the page
// tree for inherited boxes.
func pageTop(page pdf.Page) float64 {
	for v := page.V; !v.IsNull(); v = v.Key("Parent") {
		if mb := v.Key("MediaBox"); mb.Kind() == pdf.Array && mb.Len() == 4 {
			return mb.Index(3).Float64()
		}
	}
	return defaultPageTop
}

// pdftotextPage runs poppler's pdftotext on a single page.
func pdftotextPage(path string, number int) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("pdftotext not available: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), pdftotextTimeout)
	defer cancel()

	n := strconv.Itoa(number)
	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", "-f", n, "-l", n, path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
