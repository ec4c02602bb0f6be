package extractor

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// wordsFromGlyphs joins positioned glyph runs into words. PDF space has its
// origin at the bottom-left; words are returned with Top measured down from
// pageTop.
func wordsFromGlyphs(glyphs []pdf.Text, pageTop float64) []models.Word {
	items := make([]pdf.Text, 0, len(glyphs))
	for _, g := range glyphs {
		if g.S != "" {
			items = append(items, g)
		}
	}
	if len(items) == 0 {
		return nil
	}

	// Top of page first; glyphs within a line tolerance share a line and are
	// ordered left to right.
	sort.SliceStable(items, func(a, b int) bool { return items[a].Y > items[b].Y })
	var lines [][]pdf.Text
	for _, g := range items {
		n := len(lines)
		if n > 0 && math.Abs(lines[n-1][0].Y-g.Y) <= lineTolerance(lines[n-1][0]) {
			lines[n-1] = append(lines[n-1], g)
			continue
		}
		lines = append(lines, []pdf.Text{g})
	}

	var words []models.Word
	var cur []pdf.Text
	flush := func() {
		if len(cur) == 0 {
			return
		}
		var sb strings.Builder
		size := 0.0
		for _, g := range cur {
			sb.WriteString(g.S)
			size = math.Max(size, g.FontSize)
		}
		first, last := cur[0], cur[len(cur)-1]
		text := strings.TrimSpace(sb.String())
		if text != "" {
			words = append(words, models.Word{
				Text:   text,
				Left:   first.X,
				Right:  last.X + last.W,
				Top:    pageTop - first.Y - size,
				Bottom: pageTop - first.Y,
			})
		}
		cur = cur[:0]
	}

	for _, line := range lines {
		sort.SliceStable(line, func(a, b int) bool { return line[a].X < line[b].X })
		for _, g := range line {
			if strings.TrimSpace(g.S) == "" {
				flush()
				continue
			}
			if len(cur) > 0 {
				prev := cur[len(cur)-1]
				if g.X-(prev.X+prev.W) > wordGap(prev) {
					flush()
				}
			}
			cur = append(cur, g)
		}
		flush()
	}
	return words
}

func lineTolerance(g pdf.Text) float64 {
	return math.Max(1, 0.3*g.FontSize)
}

func wordGap(g pdf.Text) float64 {
	return math.Max(1.5, 0.25*g.FontSize)
}

// linesFromWords rebuilds text lines by grouping words on rounded Top.
func linesFromWords(words []models.Word) string {
	rows := make(map[int][]models.Word)
	for _, w := range words {
		key := int(math.Round(w.Top))
		rows[key] = append(rows[key], w)
	}
	keys := make([]int, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var lines []string
	for _, k := range keys {
		row := rows[k]
		sort.Slice(row, func(a, b int) bool { return row[a].Left < row[b].Left })
		parts := make([]string, 0, len(row))
		for _, w := range row {
			parts = append(parts, w.Text)
		}
		if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
