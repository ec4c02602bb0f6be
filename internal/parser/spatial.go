package parser

import (
	"math"
	"sort"
	"strings"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

const (
	DefaultColumnGap      = 20.0
	DefaultRowGranularity = 1.0
)

// SpatialReconstructor rebuilds table rows from positioned words when a page
// has neither usable text lines nor a detected table.
type SpatialReconstructor struct {
	// ColumnGap is the largest distance between word left edges that still
	// belong to the same column.
	ColumnGap float64
	// RowGranularity is the vertical bucket size used to group words into rows.
	RowGranularity float64
	ReferenceYear  int
}

// Extract clusters words into columns and rows and reads one transaction
// per row: date scanning left to right, amount scanning right to left,
// merchant from the cells in between.
func (s *SpatialReconstructor) Extract(words []models.Word) Result {
	var res Result
	if len(words) == 0 {
		return res
	}

	columns := clusterColumns(words, s.gap())
	grid := s.buildRows(words, columns)
	for _, cells := range grid {
		res.Candidates++
		if txn, ok := s.readRow(cells); ok {
			res.Rows = append(res.Rows, txn)
		}
	}
	return res
}

func (s *SpatialReconstructor) gap() float64 {
	if s.ColumnGap <= 0 {
		return DefaultColumnGap
	}
	return s.ColumnGap
}

func (s *SpatialReconstructor) granularity() float64 {
	if s.RowGranularity <= 0 {
		return DefaultRowGranularity
	}
	return s.RowGranularity
}

// clusterColumns groups sorted distinct left edges greedily and returns the
// mean left edge of each cluster.
func clusterColumns(words []models.Word, gap float64) []float64 {
	seen := make(map[float64]bool)
	var lefts []float64
	for _, w := range words {
		if !seen[w.Left] {
			seen[w.Left] = true
			lefts = append(lefts, w.Left)
		}
	}
	sort.Float64s(lefts)

	var centers []float64
	sum, n := lefts[0], 1
	for i := 1; i < len(lefts); i++ {
		if lefts[i]-lefts[i-1] <= gap {
			sum += lefts[i]
			n++
			continue
		}
		centers = append(centers, sum/float64(n))
		sum, n = lefts[i], 1
	}
	return append(centers, sum/float64(n))
}

func nearestColumn(left float64, centers []float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range centers {
		if d := math.Abs(left - c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// buildRows returns rows top to bottom, each a list of cell texts in column
// order. Empty columns are omitted.
func (s *SpatialReconstructor) buildRows(words []models.Word, centers []float64) [][]string {
	type placed struct {
		col  int
		word models.Word
	}
	rows := make(map[int][]placed)
	for _, w := range words {
		if strings.TrimSpace(w.Text) == "" {
			continue
		}
		key := int(math.Round(w.Top / s.granularity()))
		rows[key] = append(rows[key], placed{col: nearestColumn(w.Left, centers), word: w})
	}

	keys := make([]int, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([][]string, 0, len(keys))
	for _, k := range keys {
		items := rows[k]
		sort.SliceStable(items, func(a, b int) bool {
			if items[a].col != items[b].col {
				return items[a].col < items[b].col
			}
			return items[a].word.Left < items[b].word.Left
		})

		var cells []string
		var parts []string
		for i, it := range items {
			parts = append(parts, strings.TrimSpace(it.word.Text))
			if i == len(items)-1 || items[i+1].col != it.col {
				cells = append(cells, strings.Join(parts, " "))
				parts = parts[:0]
			}
		}
		out = append(out, cells)
	}
	return out
}

// readRow reads a transaction from one row of cells. Cells are split into
// words so a date or amount is still found when column clustering merged it
// with merchant text. The date is the first date-shaped run of up to three
// words scanning left to right; the amount is the first amount-shaped word
// scanning right to left, with an adjacent CR/DR marker or currency prefix.
func (s *SpatialReconstructor) readRow(cells []string) (models.Transaction, bool) {
	var tokens []string
	for _, c := range cells {
		tokens = append(tokens, strings.Fields(c)...)
	}
	used := make([]bool, len(tokens))

	dateFrom, dateTo := -1, -1
	for i := 0; i < len(tokens) && dateFrom < 0; i++ {
		for span := 3; span >= 1; span-- {
			if i+span > len(tokens) {
				continue
			}
			if looksLikeDate(strings.Join(tokens[i:i+span], " ")) {
				dateFrom, dateTo = i, i+span
				break
			}
		}
	}
	if dateFrom < 0 {
		return models.Transaction{}, false
	}
	for i := dateFrom; i < dateTo; i++ {
		used[i] = true
	}

	amountAt, markerAt := -1, -1
	for j := len(tokens) - 1; j >= 0 && amountAt < 0; j-- {
		if used[j] {
			continue
		}
		if isKindMarker(tokens[j]) && j > 0 && !used[j-1] && looksLikeAmount(tokens[j-1]) {
			amountAt, markerAt = j-1, j
			break
		}
		if looksLikeAmount(tokens[j]) {
			amountAt = j
		}
	}
	if amountAt < 0 {
		return models.Transaction{}, false
	}
	amountFrom, amountTo := amountAt, amountAt+1
	if markerAt >= 0 {
		amountTo = markerAt + 1
	}
	if amountFrom > 0 && !used[amountFrom-1] && isCurrencyToken(tokens[amountFrom-1]) {
		amountFrom--
	}
	for i := amountFrom; i < amountTo; i++ {
		used[i] = true
	}

	var merchantParts []string
	for i, tok := range tokens {
		if !used[i] {
			merchantParts = append(merchantParts, tok)
		}
	}
	merchant := CleanMerchant(strings.Join(merchantParts, " "))
	if merchant == "" {
		return models.Transaction{}, false
	}

	amount, kind, err := ParseAmount(strings.Join(tokens[amountFrom:amountTo], " "))
	if err != nil {
		return models.Transaction{}, false
	}

	rawDate := strings.Join(tokens[dateFrom:dateTo], " ")
	return models.Transaction{
		Date:     ParseDate(rawDate, s.ReferenceYear),
		RawDate:  rawDate,
		Merchant: merchant,
		Amount:   amount,
		Type:     ResolveKind(amount, kind),
		Source:   "spatial",
	}, true
}

func isKindMarker(tok string) bool {
	return len(tok) == 2 && models.ParseKind(tok) != models.KindUnknown
}

func isCurrencyToken(tok string) bool {
	switch tok {
	case "₹", "$", "£", "€":
		return true
	}
	return currencyCodes[strings.ToUpper(strings.TrimSuffix(tok, "."))]
}
