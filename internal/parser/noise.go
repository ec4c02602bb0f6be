package parser

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// summaryKeywords mark statement summary lines that look like transactions
// but only repeat balances and totals.
var summaryKeywords = []string{
	"opening balance", "closing balance", "previous balance", "statement balance",
	"balance brought forward", "balance carried forward", "brought forward", "carried forward",
	"total paid in", "total paid out", "total payments", "total receipts",
	"total amount due", "total due", "minimum amount due", "minimum payment due",
	"credit limit", "available credit", "available limit", "cash limit",
}

// NoiseFilter recognises summary lines with a single Aho-Corasick pass.
type NoiseFilter struct {
	matcher  *ahocorasick.Matcher
	keywords []string
}

// NewNoiseFilter builds a filter over the given lowercase keywords.
func NewNoiseFilter(keywords []string) *NoiseFilter {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &NoiseFilter{
		matcher:  ahocorasick.NewStringMatcher(lowered),
		keywords: lowered,
	}
}

var (
	defaultNoise     *NoiseFilter
	defaultNoiseOnce sync.Once
)

// DefaultNoiseFilter returns the shared filter over the built-in keywords.
func DefaultNoiseFilter() *NoiseFilter {
	defaultNoiseOnce.Do(func() {
		defaultNoise = NewNoiseFilter(summaryKeywords)
	})
	return defaultNoise
}

// IsNoise reports whether line contains any summary keyword.
func (f *NoiseFilter) IsNoise(line string) bool {
	if f == nil || len(f.keywords) == 0 {
		return false
	}
	return len(f.matcher.MatchThreadSafe([]byte(strings.ToLower(line)))) > 0
}

// Keywords returns the keywords the filter was built with.
func (f *NoiseFilter) Keywords() []string {
	return append([]string(nil), f.keywords...)
}
