// Package pipeline runs statement documents through the page strategy
// cascade and the document-level fallbacks, producing the ledger.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/insightdelivered/statement-ledger/internal/extractor"
	"github.com/insightdelivered/statement-ledger/internal/logger"
	"github.com/insightdelivered/statement-ledger/internal/metrics"
	"github.com/insightdelivered/statement-ledger/internal/models"
	"github.com/insightdelivered/statement-ledger/internal/parser"
)

var (
	ErrNoTransactions = errors.New("no transactions found")
	ErrOCRUnavailable = errors.New("ocr unavailable")
)

// StrategyMerchantAmount marks pages whose rows came from the dateless
// document fallback.
const StrategyMerchantAmount = parser.PatternMerchantAmount

// OCREngine recognises the text on one rendered page.
type OCREngine interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

// Rasterizer renders every page of the document at path to PNG.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string) ([][]byte, error)
}

// Categorizer fills in Category on each transaction.
type Categorizer interface {
	CategorizeAll(txns []models.Transaction)
}

// Config wires a Pipeline. OCR runs only when both OCR and Rasterizer are set.
type Config struct {
	Parser      parser.Options
	OCR         OCREngine
	Rasterizer  Rasterizer
	OCRTimeout  time.Duration
	Categorizer Categorizer
	Metrics     *metrics.Metrics
	// Opener opens input files; defaults to extractor.Open.
	Opener func(path string) (extractor.Document, error)
}

// Pipeline converts documents into ledger rows.
type Pipeline struct {
	strategies  []Strategy
	lines       *parser.LineExtractor
	ocr         OCREngine
	rasterizer  Rasterizer
	ocrTimeout  time.Duration
	categorizer Categorizer
	metrics     *metrics.Metrics
	open        func(path string) (extractor.Document, error)
	tracer      trace.Tracer
}

func New(cfg Config) *Pipeline {
	set := parser.New(cfg.Parser)
	p := &Pipeline{
		strategies:  Cascade(set),
		lines:       set.Lines,
		ocr:         cfg.OCR,
		rasterizer:  cfg.Rasterizer,
		ocrTimeout:  cfg.OCRTimeout,
		categorizer: cfg.Categorizer,
		metrics:     cfg.Metrics,
		open:        cfg.Opener,
		tracer:      otel.Tracer("github.com/insightdelivered/statement-ledger/internal/pipeline"),
	}
	if p.open == nil {
		p.open = extractor.Open
	}
	return p
}

// DocumentResult is the outcome for one input document.
type DocumentResult struct {
	ID             uuid.UUID            `json:"id"`
	Name           string               `json:"name"`
	Account        string               `json:"account"`
	Transactions   []models.Transaction `json:"-"`
	Count          int                  `json:"count"`
	Err            error                `json:"-"`
	NoTransactions bool                 `json:"noTransactions"`
	OCRUsed        bool                 `json:"ocrUsed"`
	PageFailures   int                  `json:"pageFailures"`
	Pages          []models.PageStat    `json:"pages,omitempty"`
}

// Failed reports whether the document could not be processed at all.
func (r *DocumentResult) Failed() bool {
	return r.Err != nil && !r.NoTransactions
}

// ExtractDocument runs every page through the cascade, then the dateless
// fallback and OCR when the document produced nothing. Page failures are
// recorded and never abort the document.
func (p *Pipeline) ExtractDocument(ctx context.Context, doc extractor.Document, account string) DocumentResult {
	start := time.Now()
	res := DocumentResult{ID: uuid.New(), Name: doc.Name(), Account: account}

	ctx, span := p.tracer.Start(ctx, "pipeline.ExtractDocument",
		trace.WithAttributes(attribute.String("document.name", res.Name), attribute.String("document.id", res.ID.String())))
	defer span.End()

	log := logger.FromContext(ctx).With("document", res.Name, "document_id", res.ID.String())
	ctx = logger.WithLogger(ctx, log)

	var rows []models.Transaction
	for _, page := range doc.Pages() {
		if err := ctx.Err(); err != nil {
			res.Err = err
			break
		}
		stat, pageRows := p.extractPage(ctx, page)
		if stat.Err != "" {
			res.PageFailures++
			p.metrics.PageFailed()
			log.Warn("page extraction failed", "page", stat.Page, "error", stat.Err)
		} else {
			p.metrics.PageDone(stat.Strategy)
			log.Debug("page extracted", "page", stat.Page, "strategy", stat.Strategy, "rows", stat.Rows, "candidates", stat.Candidates)
		}
		res.Pages = append(res.Pages, stat)
		rows = append(rows, pageRows...)
	}

	if res.Err == nil && len(rows) == 0 {
		rows = p.merchantAmountFallback(ctx, doc, &res)
	}

	var ocrErr error
	if res.Err == nil && len(rows) == 0 {
		rows, ocrErr = p.ocrFallback(ctx, doc, &res)
	}

	for i := range rows {
		rows[i].Account = account
	}
	if p.categorizer != nil {
		p.categorizer.CategorizeAll(rows)
	} else {
		for i := range rows {
			rows[i].Category = models.OthersCategory
		}
	}
	res.Transactions = rows
	res.Count = len(rows)

	outcome := metrics.OutcomeOK
	switch {
	case res.Err != nil:
		outcome = metrics.OutcomeFailed
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		log.Error("document aborted", "error", res.Err)
	case len(rows) == 0:
		outcome = metrics.OutcomeNoTransactions
		res.NoTransactions = true
		res.Err = ErrNoTransactions
		if ocrErr != nil {
			res.Err = fmt.Errorf("%w: %w", ErrNoTransactions, ocrErr)
		}
		log.Warn("no transactions found", "pages", len(res.Pages), "ocr", res.OCRUsed)
	default:
		log.Info("document extracted", "transactions", len(rows), "pages", len(res.Pages), "page_failures", res.PageFailures, "ocr", res.OCRUsed)
	}
	span.SetAttributes(attribute.Int("document.transactions", len(rows)))
	p.metrics.DocumentDone(outcome, time.Since(start).Seconds())
	return res
}

// extractPage runs the cascade on one page. The first strategy that yields
// rows decides the page; an error or panic leaves the page with no rows.
func (p *Pipeline) extractPage(ctx context.Context, page extractor.Page) (stat models.PageStat, rows []models.Transaction) {
	stat.Page = page.Number()

	_, span := p.tracer.Start(ctx, "pipeline.page", trace.WithAttributes(attribute.Int("page.number", stat.Page)))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			stat.Err = fmt.Sprintf("panic: %v", r)
			stat.Strategy, stat.Rows, rows = "", 0, nil
		}
		if stat.Err != "" {
			span.SetStatus(codes.Error, stat.Err)
		}
		span.SetAttributes(attribute.String("page.strategy", stat.Strategy), attribute.Int("page.rows", stat.Rows))
	}()

	for _, s := range p.strategies {
		result, err := s.Extract(ctx, page)
		if err != nil {
			stat.Err = fmt.Sprintf("%s: %v", s.Name(), err)
			return stat, nil
		}
		stat.Candidates += result.Candidates
		stat.Lines = append(stat.Lines, result.Lines...)
		if len(result.Rows) > 0 {
			stat.Strategy = s.Name()
			stat.Rows = len(result.Rows)
			return stat, tagPage(result.Rows, stat.Page)
		}
	}
	return stat, nil
}

// merchantAmountFallback applies the dateless pattern to each page's text.
func (p *Pipeline) merchantAmountFallback(ctx context.Context, doc extractor.Document, res *DocumentResult) []models.Transaction {
	log := logger.FromContext(ctx)

	var rows []models.Transaction
	for i, page := range doc.Pages() {
		text, err := pageText(page)
		if err != nil || text == "" {
			continue
		}
		result := p.lines.ExtractMerchantAmount(text)
		if len(result.Rows) == 0 {
			continue
		}
		if i < len(res.Pages) {
			res.Pages[i].Strategy = StrategyMerchantAmount
			res.Pages[i].Rows = len(result.Rows)
			res.Pages[i].Lines = append(res.Pages[i].Lines, result.Lines...)
		}
		rows = append(rows, tagPage(result.Rows, page.Number())...)
	}
	if len(rows) > 0 {
		log.Info("dated patterns found nothing, used merchant and amount lines", "rows", len(rows))
	}
	return rows
}

// ocrFallback rasterizes the document once and re-applies the line patterns
// to the recognised text. The whole run is bounded by the OCR timeout.
func (p *Pipeline) ocrFallback(ctx context.Context, doc extractor.Document, res *DocumentResult) ([]models.Transaction, error) {
	log := logger.FromContext(ctx)

	if doc.Path() == "" {
		return nil, nil
	}
	if p.ocr == nil || p.rasterizer == nil {
		log.Debug("ocr disabled")
		return nil, ErrOCRUnavailable
	}

	if p.ocrTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.ocrTimeout)
		defer cancel()
	}
	ctx, span := p.tracer.Start(ctx, "pipeline.ocr")
	defer span.End()

	images, err := p.rasterizer.Rasterize(ctx, doc.Path())
	switch {
	case errors.Is(err, extractor.ErrUnsupportedFormat):
		return nil, nil
	case errors.Is(err, extractor.ErrRasterizerUnavailable):
		p.metrics.OCRRun("unavailable")
		log.Warn("ocr skipped", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrOCRUnavailable, err)
	case err != nil:
		return nil, p.ocrFailed(log, span, err)
	}
	res.OCRUsed = true

	texts := make([]string, 0, len(images))
	for i, img := range images {
		text, err := p.ocr.Recognize(ctx, img)
		if err != nil {
			if ctx.Err() != nil {
				return nil, p.ocrFailed(log, span, ctx.Err())
			}
			log.Warn("ocr page failed", "page", i+1, "error", err)
			texts = append(texts, "")
			continue
		}
		texts = append(texts, parser.RepairOCRText(text))
	}

	rows := p.linesFromOCR(texts, p.lines.Extract)
	if len(rows) == 0 {
		rows = p.linesFromOCR(texts, p.lines.ExtractMerchantAmount)
	}
	p.metrics.OCRRun("ok")
	span.SetAttributes(attribute.Int("ocr.pages", len(images)), attribute.Int("ocr.rows", len(rows)))
	log.Info("ocr fallback finished", "pages", len(images), "rows", len(rows))
	return rows, nil
}

func (p *Pipeline) linesFromOCR(texts []string, extract func(string) parser.Result) []models.Transaction {
	var rows []models.Transaction
	for i, text := range texts {
		rows = append(rows, tagPage(extract(text).Rows, i+1)...)
	}
	return rows
}

func (p *Pipeline) ocrFailed(log *slog.Logger, span trace.Span, err error) error {
	p.metrics.OCRRun("error")
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.Warn("ocr fallback failed", "error", err)
	return fmt.Errorf("ocr: %w", err)
}

// pageText reads a page's text, converting a panic into an error.
func pageText(page extractor.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	text, err = page.Text()
	return strings.TrimSpace(text), err
}

func tagPage(rows []models.Transaction, page int) []models.Transaction {
	for i := range rows {
		rows[i].Page = page
	}
	return rows
}
