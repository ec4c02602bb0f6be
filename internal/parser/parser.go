// Package parser turns page content (text lines, detected tables, positioned
// words) into normalized transactions.
package parser

// Options configures the extractors built by New.
type Options struct {
	// ReferenceYear is applied to dates printed without a year.
	ReferenceYear       int
	NormalizeTableDates bool
	ColumnGap           float64
	RowGranularity      float64
	// ExtraNoise adds statement-specific summary keywords to the built-in set.
	ExtraNoise []string
	Debug      bool
}

// Set bundles the three page-level extractors.
type Set struct {
	Lines   *LineExtractor
	Table   *TableExtractor
	Spatial *SpatialReconstructor
}

// New returns extractors configured from opts.
func New(opts Options) *Set {
	noise := DefaultNoiseFilter()
	if len(opts.ExtraNoise) > 0 {
		noise = NewNoiseFilter(append(append([]string(nil), summaryKeywords...), opts.ExtraNoise...))
	}
	return &Set{
		Lines: &LineExtractor{
			ReferenceYear: opts.ReferenceYear,
			Noise:         noise,
			Debug:         opts.Debug,
		},
		Table: &TableExtractor{
			NormalizeDates: opts.NormalizeTableDates,
			ReferenceYear:  opts.ReferenceYear,
		},
		Spatial: &SpatialReconstructor{
			ColumnGap:      opts.ColumnGap,
			RowGranularity: opts.RowGranularity,
			ReferenceYear:  opts.ReferenceYear,
		},
	}
}
