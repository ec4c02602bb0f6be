package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

func w(text string, left, top float64) models.Word {
	return models.Word{Text: text, Left: left, Right: left + float64(len(text))*5, Top: top, Bottom: top + 10}
}

func cellValue(c *string) string {
	if c == nil {
		return "<nil>"
	}
	return *c
}

func TestDetectTable(t *testing.T) {
	words := []models.Word{
		w("ACME", 40, 20), w("BANK", 65, 20),
		w("Transaction", 40, 60), w("Date", 100, 60),
		w("Description", 200, 60),
		w("Amount", 420, 60),
		w("01/08/2025", 40, 80), w("Netflix", 200, 80), w("649.00", 425, 80),
		w("02/08/2025", 40, 100), w("SWIGGY", 200, 100), w("ORDER", 240, 100), w("452.00", 425, 100),
		w("03/08/2025", 40, 120), w("CASHBACK", 200, 120),
	}

	grid := detectTable(words)
	require.Len(t, grid, 4)

	header := grid[0]
	require.Len(t, header, 3)
	assert.Equal(t, "Transaction Date", cellValue(header[0]))
	assert.Equal(t, "Description", cellValue(header[1]))
	assert.Equal(t, "Amount", cellValue(header[2]))

	assert.Equal(t, "01/08/2025", cellValue(grid[1][0]))
	assert.Equal(t, "Netflix", cellValue(grid[1][1]))
	assert.Equal(t, "649.00", cellValue(grid[1][2]))

	assert.Equal(t, "SWIGGY ORDER", cellValue(grid[2][1]))
	assert.Nil(t, grid[3][2])
}

func TestDetectTable_NoHeader(t *testing.T) {
	words := []models.Word{
		w("05/08/2025", 40, 100), w("UBER", 200, 100), w("210.50", 420, 100),
	}
	assert.Nil(t, detectTable(words))
}
