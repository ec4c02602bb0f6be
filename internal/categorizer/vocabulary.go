// Package categorizer assigns spending categories to merchants by fuzzy
// matching against a vocabulary learned from user corrections.
package categorizer

import (
	"errors"
	"strings"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// DefaultThreshold is the minimum similarity (0-100) a vocabulary key needs
// to claim a merchant.
const DefaultThreshold = 80

var ErrEmptyMerchant = errors.New("merchant must not be empty")

// Entry maps a lowercase merchant key to a category.
type Entry struct {
	Merchant string `json:"merchant" yaml:"merchant"`
	Category string `json:"category" yaml:"category"`
}

// Vocabulary is an immutable, ordered snapshot of merchant keys. The zero
// value and nil are empty vocabularies.
type Vocabulary struct {
	entries []Entry
	index   map[string]int
}

// NewVocabulary builds a snapshot from entries in order. Keys are normalized;
// a repeated key keeps its first position and takes the later category.
func NewVocabulary(entries []Entry) *Vocabulary {
	v := &Vocabulary{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		key := NormalizeKey(e.Merchant)
		if key == "" {
			continue
		}
		if i, ok := v.index[key]; ok {
			v.entries[i].Category = e.Category
			continue
		}
		v.index[key] = len(v.entries)
		v.entries = append(v.entries, Entry{Merchant: key, Category: e.Category})
	}
	return v
}

// NormalizeKey lowercases a merchant and collapses its whitespace.
func NormalizeKey(merchant string) string {
	return strings.Join(strings.Fields(strings.ToLower(merchant)), " ")
}

// Len returns the number of entries. A nil vocabulary is empty.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.entries)
}

// Entries returns a copy of the entries in vocabulary order.
func (v *Vocabulary) Entries() []Entry {
	if v == nil {
		return nil
	}
	return append([]Entry(nil), v.entries...)
}

// Lookup returns the category stored under the exact key.
func (v *Vocabulary) Lookup(merchant string) (string, bool) {
	if v == nil {
		return "", false
	}
	i, ok := v.index[NormalizeKey(merchant)]
	if !ok {
		return "", false
	}
	return v.entries[i].Category, true
}

// With returns a new snapshot with merchant mapped to category. An existing
// key keeps its position.
func (v *Vocabulary) With(merchant, category string) *Vocabulary {
	return NewVocabulary(append(v.Entries(), Entry{Merchant: merchant, Category: category}))
}

// AddCorrection records a user correction and returns the updated snapshot.
// The input snapshot is not modified.
func AddCorrection(merchant, category string, v *Vocabulary) (*Vocabulary, error) {
	if NormalizeKey(merchant) == "" {
		return v, ErrEmptyMerchant
	}
	if strings.TrimSpace(category) == "" {
		return v, ErrUnknownCategory
	}
	return v.With(merchant, strings.TrimSpace(category)), nil
}

// Match is the outcome of scoring a merchant against a vocabulary.
type Match struct {
	Key      string
	Category string
	Score    int
}

// Best returns the highest scoring key at or above threshold. Ties keep the
// first key encountered.
func Best(merchant string, v *Vocabulary, threshold int) (Match, bool) {
	name := NormalizeKey(merchant)
	if name == "" || v.Len() == 0 {
		return Match{}, false
	}

	var (
		best  Match
		found bool
	)
	for _, e := range v.entries {
		score := Score(name, e.Merchant)
		if score < threshold {
			continue
		}
		if !found || score > best.Score {
			best = Match{Key: e.Merchant, Category: e.Category, Score: score}
			found = true
		}
	}
	return best, found
}

// Categorize returns the category of the best match, or Others.
func Categorize(merchant string, v *Vocabulary, threshold int) string {
	if m, ok := Best(merchant, v, threshold); ok {
		return m.Category
	}
	return models.OthersCategory
}
