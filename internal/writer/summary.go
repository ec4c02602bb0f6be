package writer

import (
	"sort"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

const defaultCurrency = "INR"

// Summary totals a ledger. Debit and Credit are both positive; Net is
// Debit minus Credit.
type Summary struct {
	Count      int             `json:"count"`
	Debit      decimal.Decimal `json:"totalDebit"`
	Credit     decimal.Decimal `json:"totalCredit"`
	Net        decimal.Decimal `json:"net"`
	Currency   string          `json:"currency"`
	Categories []CategoryTotal `json:"categories"`
}

// CategoryTotal is the debit spend in one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

// Summarize totals txns. Categories are ordered by spend, largest first.
func Summarize(txns []models.Transaction, currency string) Summary {
	if money.GetCurrency(currency) == nil {
		currency = defaultCurrency
	}
	s := Summary{Count: len(txns), Currency: currency}

	byCategory := make(map[string]*CategoryTotal)
	for _, txn := range txns {
		if txn.IsCredit() {
			s.Credit = s.Credit.Add(txn.Amount.Abs())
			continue
		}
		s.Debit = s.Debit.Add(txn.Amount)

		name := txn.Category
		if name == "" {
			name = models.OthersCategory
		}
		ct, ok := byCategory[name]
		if !ok {
			ct = &CategoryTotal{Category: name}
			byCategory[name] = ct
		}
		ct.Amount = ct.Amount.Add(txn.Amount)
		ct.Count++
	}
	s.Net = s.Debit.Sub(s.Credit)

	for _, ct := range byCategory {
		s.Categories = append(s.Categories, *ct)
	}
	sort.Slice(s.Categories, func(i, j int) bool {
		if c := s.Categories[i].Amount.Cmp(s.Categories[j].Amount); c != 0 {
			return c > 0
		}
		return s.Categories[i].Category < s.Categories[j].Category
	})
	return s
}

// Display formats an amount in the summary's currency, e.g. "₹1,152.42".
func (s Summary) Display(amount decimal.Decimal) string {
	currency := money.GetCurrency(s.Currency)
	if currency == nil {
		currency = money.GetCurrency(defaultCurrency)
	}
	minor := amount.Mul(decimal.New(1, int32(currency.Fraction))).Round(0).IntPart()
	return money.New(minor, currency.Code).Display()
}
