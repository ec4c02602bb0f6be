package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-ledger/internal/categorizer"
	"github.com/insightdelivered/statement-ledger/internal/config"
	"github.com/insightdelivered/statement-ledger/internal/extractor"
	"github.com/insightdelivered/statement-ledger/internal/logger"
	"github.com/insightdelivered/statement-ledger/internal/metrics"
	"github.com/insightdelivered/statement-ledger/internal/ocr"
	"github.com/insightdelivered/statement-ledger/internal/parser"
	"github.com/insightdelivered/statement-ledger/internal/pipeline"
)

// appContext carries configuration and opened resources between the root
// command and its subcommands.
type appContext struct {
	cfg   *config.Config
	flags struct {
		logLevel  string
		backend   string
		path      string
		dsn       string
		threshold int
	}
	closers []func()
}

// load reads the environment configuration and applies flag overrides.
func (a *appContext) load(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if flags.Changed("vocab-backend") {
		cfg.Categorizer.Backend = strings.ToLower(a.flags.backend)
	}
	if flags.Changed("vocab-path") {
		cfg.Categorizer.Path = a.flags.path
	}
	if flags.Changed("vocab-dsn") {
		cfg.Categorizer.DSN = a.flags.dsn
	}
	if flags.Changed("threshold") {
		cfg.Categorizer.Threshold = a.flags.threshold
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Init(cfg.LogLevel)
	a.cfg = cfg
	return nil
}

func (a *appContext) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// openStore opens the configured vocabulary backend.
func (a *appContext) openStore(ctx context.Context) (categorizer.Store, error) {
	c := a.cfg.Categorizer
	switch c.Backend {
	case config.BackendYAML:
		return categorizer.NewYAMLStore(c.Path), nil
	case config.BackendSQLite:
		store, err := categorizer.OpenSQLite(c.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { store.Close() })
		return store, nil
	case config.BackendPostgres:
		store, pool, err := categorizer.OpenPostgres(ctx, c.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		return store, nil
	case config.BackendMemory:
		return categorizer.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown vocabulary backend %q", c.Backend)
}

// vocabulary opens the store and loads the categorizer. A store that opens
// but cannot be read still yields a working service.
func (a *appContext) vocabulary(ctx context.Context, m *metrics.Metrics) (*categorizer.Service, error) {
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	return categorizer.NewService(ctx, store, categorizer.Options{
		Threshold:  a.cfg.Categorizer.Threshold,
		Categories: a.cfg.Categorizer.Categories,
		Metrics:    m,
	}), nil
}

func (a *appContext) pipeline(vocab *categorizer.Service, m *metrics.Metrics, debug bool) *pipeline.Pipeline {
	ex := a.cfg.Extraction
	cfg := pipeline.Config{
		Parser: parser.Options{
			ReferenceYear:       ex.ReferenceYear,
			NormalizeTableDates: ex.NormalizeTableDates,
			ColumnGap:           ex.ColumnGap,
			RowGranularity:      ex.RowGranularity,
			ExtraNoise:          ex.ExtraNoise,
			Debug:               debug,
		},
		OCRTimeout:  a.cfg.OCR.Timeout,
		Categorizer: vocab,
		Metrics:     m,
	}
	if a.cfg.OCR.Enabled {
		cfg.OCR = ocr.New(a.cfg.OCR.Language)
		cfg.Rasterizer = &extractor.PDFRasterizer{DPI: a.cfg.OCR.DPI}
	}
	return pipeline.New(cfg)
}
