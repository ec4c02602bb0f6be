package extractor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestOpenCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "august.csv")
	content := "ACME BANK STATEMENT\n" +
		"Date,Description,Amount\n" +
		"01/08/2025,Netflix,649.00\n" +
		"02/08/2025,\"SWIGGY, ORDER\",452.00\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	doc, err := Open(path)
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, "august.csv", doc.Name())
	assert.Equal(t, path, doc.Path())
	require.Len(t, doc.Pages(), 1)

	page := doc.Pages()[0]
	assert.Equal(t, 1, page.Number())

	grid, err := page.Table()
	require.NoError(t, err)
	require.Len(t, grid, 4)
	assert.Equal(t, "SWIGGY, ORDER", *grid[3][1])

	text, err := page.Text()
	require.NoError(t, err)
	assert.Contains(t, text, "01/08/2025 Netflix 649.00")

	words, err := page.Words()
	require.NoError(t, err)
	assert.Empty(t, words)
}

func TestOpenExcel_OnePagePerSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Date", "Merchant", "Amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"01/08/2025", "Netflix", "649.00"}))
	_, err := f.NewSheet("September")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("September", "A1", &[]interface{}{"Date", "Merchant", "Amount"}))
	require.NoError(t, f.SetSheetRow("September", "A2", &[]interface{}{"01/09/2025", "Spotify", "119.00"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	doc, err := Open(path)
	require.NoError(t, err)
	require.Len(t, doc.Pages(), 2)

	grid, err := doc.Pages()[1].Table()
	require.NoError(t, err)
	require.Len(t, grid, 2)
	assert.Equal(t, "Spotify", *grid[1][1])
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open("statement.docx")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Open(filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.Is(err, ErrOpen))

	bad := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("not a pdf"), 0o644))
	_, err = Open(bad)
	assert.True(t, errors.Is(err, ErrOpen))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.PDF"))
	assert.True(t, Supported("a.csv"))
	assert.True(t, Supported("a.xlsx"))
	assert.False(t, Supported("a.txt"))
}

func TestTabularPage_EmptySheet(t *testing.T) {
	doc := NewTabularDocument("empty.csv", nil)
	grid, err := doc.Pages()[0].Table()
	require.NoError(t, err)
	assert.Nil(t, grid)
}
