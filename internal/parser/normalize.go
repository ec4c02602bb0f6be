package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrAmbiguousIndicator = errors.New("amount carries both CR and DR indicators")
)

// currencyCodes are letter runs stripped from amount text.
var currencyCodes = map[string]bool{
	"INR": true, "RS": true, "USD": true, "GBP": true, "EUR": true,
}

var (
	letterRun    = regexp.MustCompile(`[A-Z]+\.?`)
	plainDecimal = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)$`)
	whitespace   = regexp.MustCompile(`\s+`)
	septMonth    = regexp.MustCompile(`(?i)\bsept\b`)
)

// ParseAmount converts statement amount text such as "1,152.42 CR",
// "Rs. 452.00", "(649.00)" or "₹210.50" to a two-decimal amount.
//
// A CR indicator forces the amount negative, DR forces it positive. Without
// an indicator the sign is kept; non-negative amounts are debits and
// negative amounts come back as KindUnknown for the caller to resolve.
func ParseAmount(raw string) (decimal.Decimal, models.Kind, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, models.KindUnknown, ErrInvalidAmount
	}

	var sawCR, sawDR, stray bool
	s = letterRun.ReplaceAllStringFunc(strings.ToUpper(s), func(tok string) string {
		switch strings.TrimSuffix(tok, ".") {
		case "CR":
			sawCR = true
		case "DR":
			sawDR = true
		default:
			if !currencyCodes[strings.TrimSuffix(tok, ".")] {
				stray = true
			}
		}
		return ""
	})
	if sawCR && sawDR {
		return decimal.Zero, models.KindUnknown, ErrAmbiguousIndicator
	}
	if stray {
		return decimal.Zero, models.KindUnknown, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	s = strings.NewReplacer(
		"₹", "", "$", "", "£", "", "€", "",
		",", "", " ", "", "\u00a0", "", "\t", "",
	).Replace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasSuffix(s, "-") && !strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimSuffix(s, "-")
	}
	if !plainDecimal.MatchString(s) {
		return decimal.Zero, models.KindUnknown, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, models.KindUnknown, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if negative {
		amount = amount.Neg()
	}
	amount = amount.Round(2)

	switch {
	case sawCR:
		return amount.Abs().Neg(), models.KindCredit, nil
	case sawDR:
		return amount.Abs(), models.KindDebit, nil
	case amount.IsNegative():
		return amount, models.KindUnknown, nil
	default:
		return amount, models.KindDebit, nil
	}
}

// ResolveKind settles an unknown direction: negative amounts are credits,
// everything else is a debit.
func ResolveKind(amount decimal.Decimal, kind models.Kind) models.Kind {
	if kind != models.KindUnknown {
		return kind
	}
	if amount.IsNegative() {
		return models.KindCredit
	}
	return models.KindDebit
}

// CanonicalAmount renders an amount the way ParseAmount reads it back.
func CanonicalAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

var fullDateLayouts = []string{
	"2006-01-02",
	"2/1/2006",
	"2-1-2006",
	"2/1/06",
	"2-1-06",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
}

var yearlessLayouts = []string{
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// ParseDate converts a statement date to YYYY-MM-DD. Numeric dates are read
// day first. Dates without a year take referenceYear (current year when 0).
// Unparseable input is returned unchanged.
func ParseDate(raw string, referenceYear int) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return raw
	}
	s = strings.ReplaceAll(s, ",", " ")
	s = strings.ReplaceAll(s, ".", " ")
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	s = septMonth.ReplaceAllString(s, "Sep")

	for _, layout := range fullDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}

	if referenceYear == 0 {
		referenceYear = time.Now().Year()
	}
	withYear := fmt.Sprintf("%s %d", s, referenceYear)
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, withYear); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}

var (
	numericDateShape = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}$`)
	isoDateShape     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	wordDateShape    = regexp.MustCompile(`(?i)^(?:\d{1,2}\s+)?` + monthWord + `(?:\s+\d{1,2})?(?:,?\s+\d{4})?$`)
	amountShape      = regexp.MustCompile(`\d\.\d{2}(?:\D|$)`)
)

// looksLikeDate reports whether a whole cell reads as a date.
func looksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	if numericDateShape.MatchString(s) || isoDateShape.MatchString(s) {
		return true
	}
	if !wordDateShape.MatchString(s) || !strings.ContainsAny(s, "0123456789") {
		return false
	}
	return ParseDate(s, 2000) != s
}

// looksLikeAmount reports whether a whole cell reads as a money amount.
func looksLikeAmount(s string) bool {
	if !amountShape.MatchString(s) {
		return false
	}
	_, _, err := ParseAmount(s)
	return err == nil
}

// CleanMerchant collapses whitespace and trims separator debris.
func CleanMerchant(s string) string {
	s = whitespace.ReplaceAllString(s, " ")
	return strings.Trim(s, " -|:* ")
}
