package models

// Word is a positioned run of text on a page. Coordinates are in points with
// the origin at the top-left corner; Top grows downwards.
type Word struct {
	Text   string  `json:"text"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Grid is a detected table: rows of optional cells, first row holds headers.
type Grid [][]*string

// Cell returns a pointer to s, for building grids by hand.
func Cell(s string) *string {
	return &s
}

// GridFromRows builds a grid where every cell is present.
func GridFromRows(rows [][]string) Grid {
	g := make(Grid, 0, len(rows))
	for _, row := range rows {
		cells := make([]*string, len(row))
		for i := range row {
			cells[i] = Cell(row[i])
		}
		g = append(g, cells)
	}
	return g
}

// LineResult captures what the line extractor did with one input line.
type LineResult struct {
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
	Result  string `json:"result"` // "parsed", "skipped", "summary", "rejected"
	Pattern string `json:"pattern,omitempty"`
}

// PageStat records how a single page was handled.
type PageStat struct {
	Page       int          `json:"page"`
	Strategy   string       `json:"strategy,omitempty"`
	Rows       int          `json:"rows"`
	Candidates int          `json:"candidates"`
	Err        string       `json:"error,omitempty"`
	Lines      []LineResult `json:"lines,omitempty"`
}
