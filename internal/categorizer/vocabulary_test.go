package categorizer

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

func TestNewVocabulary_NormalizesAndDedupes(t *testing.T) {
	v := NewVocabulary([]Entry{
		{Merchant: "  Swiggy  ORDER ", Category: "Food & Dining"},
		{Merchant: "uber", Category: "Travel"},
		{Merchant: "SWIGGY order", Category: "Groceries"},
		{Merchant: "   ", Category: "Shopping"},
	})

	assert.Equal(t, []Entry{
		{Merchant: "swiggy order", Category: "Groceries"},
		{Merchant: "uber", Category: "Travel"},
	}, v.Entries())
}

func TestCategorize(t *testing.T) {
	v := NewVocabulary([]Entry{
		{Merchant: "swiggy", Category: "Food & Dining"},
		{Merchant: "netflix", Category: "Entertainment"},
		{Merchant: "indian oil", Category: "Fuel"},
	})

	tests := []struct {
		merchant string
		want     string
	}{
		{"SWIGGY ORDER", "Food & Dining"},
		{"Netflx", "Entertainment"},
		{"INDIAN OIL PETROL PUMP", "Fuel"},
		{"Amazon Retail", models.OthersCategory},
		{"", models.OthersCategory},
	}
	for _, tt := range tests {
		t.Run(tt.merchant, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.merchant, v, DefaultThreshold))
		})
	}
}

func TestCategorize_EmptyVocabulary(t *testing.T) {
	assert.Equal(t, models.OthersCategory, Categorize("Swiggy", nil, DefaultThreshold))
	assert.Equal(t, models.OthersCategory, Categorize("Swiggy", NewVocabulary(nil), DefaultThreshold))
}

func TestCategorize_TieKeepsFirstEntry(t *testing.T) {
	// "uber" and "eats" both score 86 against "uber eats".
	first := NewVocabulary([]Entry{
		{Merchant: "uber", Category: "Travel"},
		{Merchant: "eats", Category: "Food & Dining"},
	})
	second := NewVocabulary([]Entry{
		{Merchant: "eats", Category: "Food & Dining"},
		{Merchant: "uber", Category: "Travel"},
	})

	assert.Equal(t, "Travel", Categorize("Uber Eats", first, DefaultThreshold))
	assert.Equal(t, "Food & Dining", Categorize("Uber Eats", second, DefaultThreshold))
}

func TestCategorize_Threshold(t *testing.T) {
	v := NewVocabulary([]Entry{{Merchant: "amazon", Category: "Shopping"}})

	assert.Equal(t, models.OthersCategory, Categorize("amazing", v, 80))
	assert.Equal(t, "Shopping", Categorize("amazing", v, 70))
}

func TestCategorize_Deterministic(t *testing.T) {
	faker := gofakeit.New(42)
	entries := make([]Entry, 0, 50)
	for i := 0; i < 50; i++ {
		entries = append(entries, Entry{Merchant: faker.Company(), Category: "Shopping"})
	}
	v := NewVocabulary(entries)

	for i := 0; i < 20; i++ {
		merchant := faker.Company()
		want := Categorize(merchant, v, DefaultThreshold)
		for j := 0; j < 3; j++ {
			assert.Equal(t, want, Categorize(merchant, v, DefaultThreshold), merchant)
		}
	}
}

func TestAddCorrection(t *testing.T) {
	v := NewVocabulary([]Entry{{Merchant: "swiggy", Category: "Food & Dining"}})

	next, err := AddCorrection("Foo Mart", "Shopping", v)
	require.NoError(t, err)

	assert.Equal(t, "Shopping", Categorize("foo mart", next, DefaultThreshold))
	assert.Equal(t, "Shopping", Categorize("FOO MART 1234", next, DefaultThreshold))
	assert.Equal(t, 1, v.Len(), "input snapshot unchanged")
	assert.Equal(t, 2, next.Len())
}

func TestAddCorrection_LastWriteWins(t *testing.T) {
	v, err := AddCorrection("Swiggy", "Food & Dining", nil)
	require.NoError(t, err)
	v, err = AddCorrection("Uber", "Travel", v)
	require.NoError(t, err)
	v, err = AddCorrection("SWIGGY", "Groceries", v)
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Merchant: "swiggy", Category: "Groceries"},
		{Merchant: "uber", Category: "Travel"},
	}, v.Entries())
}

func TestAddCorrection_Invalid(t *testing.T) {
	_, err := AddCorrection("  ", "Shopping", nil)
	assert.ErrorIs(t, err, ErrEmptyMerchant)

	_, err = AddCorrection("Swiggy", " ", nil)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
