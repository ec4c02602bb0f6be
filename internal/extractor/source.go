package extractor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrOpen              = errors.New("cannot open document")
)

// Page exposes the primitives the extraction strategies read. Each accessor
// returns zero values with a nil error when the page has nothing of that kind.
type Page interface {
	Number() int
	Text() (string, error)
	Table() (models.Grid, error)
	Words() ([]models.Word, error)
}

// Document is an opened statement.
type Document interface {
	Name() string
	// Path is the file on disk, used for rasterization; empty for in-memory documents.
	Path() string
	Pages() []Page
	Close() error
}

// Open dispatches on the file extension.
func Open(path string) (Document, error) {
	var (
		doc Document
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		doc, err = OpenPDF(path)
	case ".csv":
		doc, err = OpenCSV(path)
	case ".xlsx", ".xlsm":
		doc, err = OpenExcel(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Supported reports whether Open understands the file extension.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".csv", ".xlsx", ".xlsm":
		return true
	}
	return false
}
