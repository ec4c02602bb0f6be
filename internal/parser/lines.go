package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

const monthWord = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?`

// amountToken matches a money amount with an optional currency prefix.
const amountToken = `((?:(?:INR|Rs\.?|₹|\$|£|€)\s?)?-?\d[\d,]*\.\d{2})`

// indicatorTail matches an optional CR/DR suffix and the boundary after it.
const indicatorTail = `(?:\s*((?i:CR|DR))\b)?(?:\s|$)`

// Pattern names, in the order they are tried.
const (
	PatternSlash          = "slash"
	PatternDash           = "dash"
	PatternMonthDayYear   = "month-day-year"
	PatternMonthDay       = "month-day"
	PatternMerchantAmount = "merchant-amount"
)

type linePattern struct {
	name string
	re   *regexp.Regexp
	// creditWords marks the row as a credit when the line contains them.
	creditWords *regexp.Regexp
}

var creditKeywords = regexp.MustCompile(`(?i)\b(?:CR|CREDIT|PAYMENT RECEIVED)\b`)

var datedPatterns = []linePattern{
	{
		name: PatternSlash,
		re:   regexp.MustCompile(`(?:^|\s)(\d{1,2}/\d{1,2}/\d{4})\s+(.+?)\s+` + amountToken + indicatorTail),
	},
	{
		name: PatternDash,
		re:   regexp.MustCompile(`(?:^|\s)(\d{1,2}-\d{1,2}-\d{4})\s+(.+?)\s+` + amountToken + indicatorTail),
	},
	{
		name: PatternMonthDayYear,
		re:   regexp.MustCompile(`(?:^|\s)((?i:` + monthWord + `)\s+\d{1,2},\s*\d{4})\s+(.+?)\s+` + amountToken + indicatorTail),
	},
	{
		name:        PatternMonthDay,
		re:          regexp.MustCompile(`^\s*((?i:` + monthWord + `)\s+\d{1,2})\s+(.+?)\s+` + amountToken + `(?:\s*((?i:CR|DR)))?\s*$`),
		creditWords: creditKeywords,
	},
}

var merchantAmountPattern = linePattern{
	name: PatternMerchantAmount,
	re:   regexp.MustCompile(`^\s*(.*?[A-Za-z].*?)\s+` + amountToken + indicatorTail),
}

// Result is the outcome of running one strategy over one page.
type Result struct {
	Rows []models.Transaction
	// Candidates counts the lines or rows that were examined.
	Candidates int
	Lines      []models.LineResult
}

// LineExtractor matches transaction lines in plain page text.
type LineExtractor struct {
	ReferenceYear int
	Noise         *NoiseFilter
	Debug         bool
}

// NewLineExtractor returns an extractor using the default statement noise filter.
func NewLineExtractor(referenceYear int) *LineExtractor {
	return &LineExtractor{ReferenceYear: referenceYear, Noise: DefaultNoiseFilter()}
}

// Extract applies the dated patterns to every line of text.
func (e *LineExtractor) Extract(text string) Result {
	return e.run(text, datedPatterns)
}

// ExtractMerchantAmount applies the dateless merchant+amount pattern. It is
// only meant for documents where the dated patterns found nothing.
func (e *LineExtractor) ExtractMerchantAmount(text string) Result {
	return e.run(text, []linePattern{merchantAmountPattern})
}

func (e *LineExtractor) run(text string, patterns []linePattern) Result {
	var res Result
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		res.Candidates++

		if e.Noise != nil && e.Noise.IsNoise(line) {
			e.record(&res, i+1, line, "summary", "")
			continue
		}

		txn, pattern, ok := e.matchLine(line, patterns)
		switch {
		case ok:
			res.Rows = append(res.Rows, txn)
			e.record(&res, i+1, line, "parsed", pattern)
		case pattern != "":
			e.record(&res, i+1, line, "rejected", pattern)
		default:
			e.record(&res, i+1, line, "skipped", "")
		}
	}
	return res
}

// matchLine tries patterns in order; the first one whose amount parses wins.
// A pattern name with ok=false means a pattern matched but the row was rejected.
func (e *LineExtractor) matchLine(line string, patterns []linePattern) (models.Transaction, string, bool) {
	rejectedBy := ""
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		var rawDate, merchant, amountText, indicator string
		if p.name == PatternMerchantAmount {
			merchant, amountText, indicator = m[1], m[2], m[3]
		} else {
			rawDate, merchant, amountText, indicator = m[1], m[2], m[3], m[4]
		}
		if indicator == "" && p.creditWords != nil && p.creditWords.MatchString(line) {
			indicator = "CR"
		}

		amount, kind, err := ParseAmount(strings.TrimSpace(amountText + " " + indicator))
		merchant = CleanMerchant(merchant)
		if err != nil || merchant == "" {
			if rejectedBy == "" {
				rejectedBy = p.name
			}
			continue
		}

		txn := models.Transaction{
			Merchant: merchant,
			Amount:   amount,
			Type:     ResolveKind(amount, kind),
			Source:   p.name,
		}
		if rawDate == "" {
			txn.Date = models.NoDate
		} else {
			txn.RawDate = rawDate
			txn.Date = ParseDate(rawDate, e.ReferenceYear)
		}
		return txn, p.name, true
	}
	return models.Transaction{}, rejectedBy, false
}

func (e *LineExtractor) record(res *Result, n int, line, result, pattern string) {
	if !e.Debug {
		return
	}
	res.Lines = append(res.Lines, models.LineResult{
		LineNum: n,
		Text:    line,
		Result:  result,
		Pattern: pattern,
	})
}

var (
	ocrSemicolonDecimal = regexp.MustCompile(`(\d);(\s*)(\d)`)
	ocrColonDecimal     = regexp.MustCompile(`(\d,\d{3}|\d{3,}):(\d{2})\b`)
	ocrTrailingColon    = regexp.MustCompile(`(\d):(\s|$)`)
	ocrTrailingNA       = regexp.MustCompile(`\s+NA\b`)
)

// RepairOCRText fixes digit punctuation Tesseract commonly misreads, e.g.
// "1,234; 56" and "1,234:56" both become "1,234.56".
func RepairOCRText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = ocrSemicolonDecimal.ReplaceAllString(line, "$1.$3")
		line = ocrColonDecimal.ReplaceAllString(line, "$1.$2")
		line = ocrTrailingColon.ReplaceAllString(line, "$1$2")
		line = ocrTrailingNA.ReplaceAllString(line, "")
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
