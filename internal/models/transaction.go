package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Kind is the debit/credit direction of a transaction.
type Kind string

const (
	KindUnknown Kind = ""
	KindDebit   Kind = "DR"
	KindCredit  Kind = "CR"
)

// Label returns the human readable name used in exports.
func (k Kind) Label() string {
	switch k {
	case KindDebit:
		return "DEBIT"
	case KindCredit:
		return "CREDIT"
	default:
		return "UNKNOWN"
	}
}

// ParseKind maps an indicator token (CR, DR, CREDIT, DEBIT) to a Kind.
func ParseKind(s string) Kind {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CR", "CREDIT", "C":
		return KindCredit
	case "DR", "DEBIT", "D":
		return KindDebit
	}
	return KindUnknown
}

// NoDate is the date placeholder for rows matched without a date column.
const NoDate = "N/A"

// OthersCategory is assigned when no vocabulary entry is similar enough.
const OthersCategory = "Others"

// Transaction represents a single ledger row.
type Transaction struct {
	Date     string          `json:"date"`
	Merchant string          `json:"merchant"`
	Amount   decimal.Decimal `json:"amount"`
	Type     Kind            `json:"type"`
	Account  string          `json:"account"`
	Category string          `json:"category"`

	RawDate string `json:"rawDate,omitempty"`
	Source  string `json:"source,omitempty"` // debug: which strategy produced the row
	Page    int    `json:"page,omitempty"`
}

// IsCredit reports whether the row is money coming in.
func (t Transaction) IsCredit() bool {
	return t.Type == KindCredit
}
