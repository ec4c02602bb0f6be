package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/insightdelivered/statement-ledger/internal/logger"
	"github.com/insightdelivered/statement-ledger/internal/metrics"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

// Input is one document to convert, tagged with the caller's account label.
type Input struct {
	Path    string
	Name    string
	Account string
}

// Batch is the result of converting several documents.
type Batch struct {
	Documents []DocumentResult
	Ledger    []models.Transaction
}

// Failed returns the documents that could not be processed.
func (b *Batch) Failed() []DocumentResult {
	var out []DocumentResult
	for _, d := range b.Documents {
		if d.Failed() {
			out = append(out, d)
		}
	}
	return out
}

// ProcessFile opens and extracts one input. A document that cannot be opened
// is returned as a failed result.
func (p *Pipeline) ProcessFile(ctx context.Context, in Input) DocumentResult {
	name := in.Name
	if name == "" {
		name = filepath.Base(in.Path)
	}

	doc, err := p.open(in.Path)
	if err != nil {
		p.metrics.DocumentDone(metrics.OutcomeFailed, 0)
		logger.FromContext(ctx).Error("failed to open document", "document", name, "error", err)
		return DocumentResult{
			ID:      uuid.New(),
			Name:    name,
			Account: in.Account,
			Err:     fmt.Errorf("%s: %w", name, err),
		}
	}
	defer doc.Close()

	res := p.ExtractDocument(ctx, doc, in.Account)
	res.Name = name
	return res
}

// Process converts inputs in order. Failed documents are reported in the
// batch and excluded from the ledger; the others still run.
func (p *Pipeline) Process(ctx context.Context, inputs []Input) *Batch {
	start := time.Now()
	batch := &Batch{}
	for _, in := range inputs {
		res := p.ProcessFile(ctx, in)
		batch.Documents = append(batch.Documents, res)
		if !res.Failed() {
			batch.Ledger = append(batch.Ledger, res.Transactions...)
		}
	}
	logger.FromContext(ctx).Info("batch converted",
		"documents", len(inputs),
		"failed", len(batch.Failed()),
		"transactions", len(batch.Ledger),
		"duration", time.Since(start).String())
	return batch
}
