package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

func word(text string, left, top float64) models.Word {
	return models.Word{Text: text, Left: left, Right: left + float64(len(text))*5, Top: top, Bottom: top + 10}
}

func TestSpatialReconstructor_TwoColumns(t *testing.T) {
	// Date and amount sit together on the left, the merchant spans the right.
	words := []models.Word{
		word("05/08/2025", 40, 100), word("210.50", 110, 100),
		word("UBER", 300, 100), word("TRIP", 330, 100),
		word("06/08/2025", 40, 120), word("452.00", 111, 120),
		word("SWIGGY", 300, 120), word("ORDER", 340, 120), word("BANGALORE", 380, 120),
		word("continued", 300, 140),
	}

	s := &SpatialReconstructor{ReferenceYear: 2025}
	res := s.Extract(words)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, 3, res.Candidates)

	txn := res.Rows[0]
	assert.Equal(t, "2025-08-05", txn.Date)
	assert.Equal(t, "UBER TRIP", txn.Merchant)
	assert.Equal(t, "210.50", txn.Amount.StringFixed(2))
	assert.Equal(t, models.KindDebit, txn.Type)
	assert.Equal(t, "spatial", txn.Source)

	assert.Equal(t, "2025-08-06", res.Rows[1].Date)
	assert.Equal(t, "SWIGGY ORDER BANGALORE", res.Rows[1].Merchant)
	assert.Equal(t, "452.00", res.Rows[1].Amount.StringFixed(2))
}

func TestSpatialReconstructor_DateMerchantAmountColumns(t *testing.T) {
	words := []models.Word{
		word("Date", 40, 80), word("Details", 200, 80), word("Amount", 420, 80),
		word("14/08/2025", 40, 100), word("AMAZON", 200, 100), word("RETAIL", 240, 100),
		word("1,152.42", 420, 100), word("CR", 470, 100),
		word("15/08/2025", 41, 120), word("NETFLIX", 201, 120), word("649.00", 421, 120),
	}

	res := (&SpatialReconstructor{}).Extract(words)
	require.Len(t, res.Rows, 2)

	assert.Equal(t, "2025-08-14", res.Rows[0].Date)
	assert.Equal(t, "AMAZON RETAIL", res.Rows[0].Merchant)
	assert.Equal(t, "-1152.42", res.Rows[0].Amount.StringFixed(2))
	assert.Equal(t, models.KindCredit, res.Rows[0].Type)

	assert.Equal(t, "NETFLIX", res.Rows[1].Merchant)
	assert.Equal(t, "649.00", res.Rows[1].Amount.StringFixed(2))
}

func TestSpatialReconstructor_SplitWordDate(t *testing.T) {
	words := []models.Word{
		word("Aug", 40, 100), word("14", 70, 100),
		word("ZOMATO", 200, 100),
		word("320.50", 420, 100),
	}

	res := (&SpatialReconstructor{ReferenceYear: 2024}).Extract(words)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "2024-08-14", res.Rows[0].Date)
	assert.Equal(t, "Aug 14", res.Rows[0].RawDate)
	assert.Equal(t, "ZOMATO", res.Rows[0].Merchant)
}

func TestSpatialReconstructor_MergedCells(t *testing.T) {
	tests := []struct {
		name     string
		words    []models.Word
		date     string
		merchant string
		amount   string
		kind     models.Kind
	}{
		{
			name: "date merchant and amount in one column",
			words: []models.Word{
				word("05/08/2025", 40, 100), word("UBER", 58, 100), word("TRIP", 75, 100), word("210.50", 92, 100),
			},
			date:     "2025-08-05",
			merchant: "UBER TRIP",
			amount:   "210.50",
			kind:     models.KindDebit,
		},
		{
			name: "merchant word chained into the amount column",
			words: []models.Word{
				word("05/08/2025", 40, 100), word("SWIGGY", 120, 100), word("ORDER", 200, 100),
				word("BANGALORE", 380, 100), word("1,152.42", 395, 100),
			},
			date:     "2025-08-05",
			merchant: "SWIGGY ORDER BANGALORE",
			amount:   "1152.42",
			kind:     models.KindDebit,
		},
		{
			name: "credit marker inside the merged amount cell",
			words: []models.Word{
				word("14/08/2025", 40, 100), word("AMAZON", 120, 100),
				word("RETAIL", 380, 100), word("1,152.42", 395, 100), word("CR", 410, 100),
			},
			date:     "2025-08-14",
			merchant: "AMAZON RETAIL",
			amount:   "-1152.42",
			kind:     models.KindCredit,
		},
		{
			name: "currency prefix next to the amount",
			words: []models.Word{
				word("Aug", 40, 100), word("14,", 55, 100), word("2025", 70, 100),
				word("ZOMATO", 200, 100), word("Rs.", 420, 100), word("320.50", 435, 100),
			},
			date:     "2025-08-14",
			merchant: "ZOMATO",
			amount:   "320.50",
			kind:     models.KindDebit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := (&SpatialReconstructor{ReferenceYear: 2025}).Extract(tt.words)
			require.Len(t, res.Rows, 1)
			assert.Equal(t, tt.date, res.Rows[0].Date)
			assert.Equal(t, tt.merchant, res.Rows[0].Merchant)
			assert.Equal(t, tt.amount, res.Rows[0].Amount.StringFixed(2))
			assert.Equal(t, tt.kind, res.Rows[0].Type)
		})
	}
}

func TestSpatialReconstructor_RowGranularity(t *testing.T) {
	words := []models.Word{
		word("05/08/2025", 40, 100.2),
		word("UBER", 200, 101.4),
		word("210.50", 420, 100.9),
	}

	strict := (&SpatialReconstructor{RowGranularity: 1}).Extract(words)
	assert.Empty(t, strict.Rows, "misaligned baselines stay in separate rows")

	loose := (&SpatialReconstructor{RowGranularity: 4}).Extract(words)
	require.Len(t, loose.Rows, 1)
	assert.Equal(t, "UBER", loose.Rows[0].Merchant)
}

func TestSpatialReconstructor_NoWords(t *testing.T) {
	res := (&SpatialReconstructor{}).Extract(nil)
	assert.Empty(t, res.Rows)
	assert.Zero(t, res.Candidates)
}

func TestClusterColumns(t *testing.T) {
	words := []models.Word{
		word("a", 40, 0), word("b", 50, 0), word("c", 200, 0), word("d", 210, 0), word("e", 400, 0),
	}
	centers := clusterColumns(words, 20)
	require.Len(t, centers, 3)
	assert.InDelta(t, 45.0, centers[0], 0.001)
	assert.InDelta(t, 205.0, centers[1], 0.001)
	assert.InDelta(t, 400.0, centers[2], 0.001)

	assert.Equal(t, 1, nearestColumn(190, centers))
}
