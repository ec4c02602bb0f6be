package extractor

import (
	"math"
	"sort"
	"strings"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

// cellGap is the horizontal distance that separates two cells on a row.
const cellGap = 8.0

type cell struct {
	text        string
	left, right float64
}

func (c cell) center() float64 { return (c.left + c.right) / 2 }

// detectTable finds a header row naming a date column and an amount, debit
// or credit column, then slots every word row below it into the header
// columns by horizontal center. Returns nil when no header is found.
func detectTable(words []models.Word) models.Grid {
	rows := rowsOfCells(words)

	header := -1
	for i, row := range rows {
		if isHeaderRow(row) {
			header = i
			break
		}
	}
	if header < 0 {
		return nil
	}

	columns := rows[header]
	grid := make(models.Grid, 0, len(rows)-header)
	headerCells := make([]*string, len(columns))
	for i, c := range columns {
		headerCells[i] = models.Cell(c.text)
	}
	grid = append(grid, headerCells)

	for _, row := range rows[header+1:] {
		slots := make([][]string, len(columns))
		for _, c := range row {
			i := nearestCell(c.center(), columns)
			slots[i] = append(slots[i], c.text)
		}
		cells := make([]*string, len(columns))
		for i, parts := range slots {
			if len(parts) > 0 {
				cells[i] = models.Cell(strings.Join(parts, " "))
			}
		}
		grid = append(grid, cells)
	}
	return grid
}

func isHeaderRow(row []cell) bool {
	if len(row) < 3 {
		return false
	}
	hasDate, hasAmount := false, false
	for _, c := range row {
		h := strings.ToLower(c.text)
		if strings.Contains(h, "date") {
			hasDate = true
		}
		if strings.Contains(h, "amount") || strings.Contains(h, "debit") || strings.Contains(h, "credit") {
			hasAmount = true
		}
	}
	return hasDate && hasAmount
}

func nearestCell(x float64, columns []cell) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range columns {
		if d := math.Abs(x - c.center()); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// rowsOfCells groups words into rows on rounded Top, then merges words on
// each row into cells separated by at least cellGap.
func rowsOfCells(words []models.Word) [][]cell {
	byRow := make(map[int][]models.Word)
	for _, w := range words {
		key := int(math.Round(w.Top))
		byRow[key] = append(byRow[key], w)
	}
	keys := make([]int, 0, len(byRow))
	for k := range byRow {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([][]cell, 0, len(keys))
	for _, k := range keys {
		ws := byRow[k]
		sort.Slice(ws, func(a, b int) bool { return ws[a].Left < ws[b].Left })

		var cells []cell
		for _, w := range ws {
			n := len(cells)
			if n > 0 && w.Left-cells[n-1].right < cellGap {
				cells[n-1].text += " " + w.Text
				cells[n-1].right = w.Right
				continue
			}
			cells = append(cells, cell{text: w.Text, left: w.Left, right: w.Right})
		}
		out = append(out, cells)
	}
	return out
}
