package extractor

import (
	"strings"
	"unicode"
)

// minReadableLen is the shortest page text worth keeping.
const minReadableLen = 20

// textQuality returns the ratio of basic ASCII readable characters to all
// characters. unicode.IsLetter is too broad: it accepts the accented noise
// produced by identity-encoded fonts.
func textQuality(text string) float64 {
	total := 0
	readable := 0
	for _, r := range text {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
			strings.ContainsRune(".,-/:;()'\"£$€₹%&@#!?+=*", r) {
			readable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// statementWords appear on virtually every statement page with transactions.
var statementWords = []string{
	"bank", "account", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction", "card",
	"paid", "transfer", "merchant", "narration", "description", "txn",
}

func containsStatementWords(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range statementWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// isReadableText reports whether page text is usable as-is rather than
// garbage from an undecodable font.
func isReadableText(text string) bool {
	text = strings.TrimSpace(text)
	if len(text) < minReadableLen {
		return false
	}
	return textQuality(text) > 0.6
}

// looksLikeStatement is the stricter check used to pick between competing
// extractions of the same page.
func looksLikeStatement(text string) bool {
	return isReadableText(text) && containsStatementWords(text)
}
