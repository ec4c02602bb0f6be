package pipeline

import (
	"context"

	"github.com/insightdelivered/statement-ledger/internal/extractor"
	"github.com/insightdelivered/statement-ledger/internal/parser"
)

// Strategy names, in cascade order.
const (
	StrategyTable   = "table"
	StrategyText    = "text"
	StrategySpatial = "spatial"
)

// Strategy extracts rows from one page. A strategy that finds nothing
// returns an empty result and a nil error; an error means the page's
// primitive failed.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, page extractor.Page) (parser.Result, error)
}

// Cascade returns the page strategies in priority order.
func Cascade(set *parser.Set) []Strategy {
	return []Strategy{
		tableStrategy{set.Table},
		textStrategy{set.Lines},
		spatialStrategy{set.Spatial},
	}
}

type tableStrategy struct{ ex *parser.TableExtractor }

func (tableStrategy) Name() string { return StrategyTable }

func (s tableStrategy) Extract(ctx context.Context, page extractor.Page) (parser.Result, error) {
	grid, err := page.Table()
	if err != nil || len(grid) == 0 {
		return parser.Result{}, err
	}
	return s.ex.Extract(grid), nil
}

type textStrategy struct{ ex *parser.LineExtractor }

func (textStrategy) Name() string { return StrategyText }

func (s textStrategy) Extract(ctx context.Context, page extractor.Page) (parser.Result, error) {
	text, err := page.Text()
	if err != nil || text == "" {
		return parser.Result{}, err
	}
	return s.ex.Extract(text), nil
}

type spatialStrategy struct{ ex *parser.SpatialReconstructor }

func (spatialStrategy) Name() string { return StrategySpatial }

func (s spatialStrategy) Extract(ctx context.Context, page extractor.Page) (parser.Result, error) {
	words, err := page.Words()
	if err != nil || len(words) == 0 {
		return parser.Result{}, err
	}
	return s.ex.Extract(words), nil
}
