package categorizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/insightdelivered/statement-ledger/internal/logger"
	"github.com/insightdelivered/statement-ledger/internal/metrics"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

var (
	ErrPersist         = errors.New("failed to persist vocabulary")
	ErrUnknownCategory = errors.New("unknown category")
)

// Options configures a Service.
type Options struct {
	Threshold  int
	Categories []string
	Metrics    *metrics.Metrics
}

// Service owns the current vocabulary snapshot and its store. Reads use the
// snapshot without locking; corrections are serialized and persisted before
// they become visible.
type Service struct {
	store      Store
	threshold  int
	categories []string
	allowed    map[string]string
	metrics    *metrics.Metrics

	mu      sync.Mutex
	vocab   atomic.Pointer[Vocabulary]
	loadErr error
}

// NewService loads the vocabulary from store. A load failure is not fatal:
// the service starts empty and reports the failure through LoadErr.
func NewService(ctx context.Context, store Store, opts Options) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	s := &Service{
		store:     store,
		threshold: opts.Threshold,
		metrics:   opts.Metrics,
		allowed:   make(map[string]string),
	}
	if s.threshold <= 0 {
		s.threshold = DefaultThreshold
	}
	for _, c := range append(append([]string(nil), opts.Categories...), models.OthersCategory) {
		key := strings.ToLower(strings.TrimSpace(c))
		if key == "" {
			continue
		}
		if _, dup := s.allowed[key]; dup {
			continue
		}
		s.allowed[key] = strings.TrimSpace(c)
		s.categories = append(s.categories, strings.TrimSpace(c))
	}
	s.vocab.Store(NewVocabulary(nil))
	_ = s.Reload(ctx)
	return s
}

// Reload replaces the snapshot with the store's contents.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.store.Load(ctx)
	if err != nil {
		s.loadErr = fmt.Errorf("load vocabulary: %w", err)
		s.vocab.Store(NewVocabulary(nil))
		logger.FromContext(ctx).Error("vocabulary unavailable, categorizing as Others", "error", err)
		return s.loadErr
	}
	s.loadErr = nil
	s.vocab.Store(NewVocabulary(entries))
	logger.FromContext(ctx).Debug("vocabulary loaded", "entries", len(entries))
	return nil
}

// LoadErr reports why the last load failed, or nil.
func (s *Service) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Snapshot returns the current vocabulary.
func (s *Service) Snapshot() *Vocabulary {
	return s.vocab.Load()
}

// Categories returns the closed category set, Others last.
func (s *Service) Categories() []string {
	return append([]string(nil), s.categories...)
}

// Threshold is the minimum score a match needs to assign its category.
func (s *Service) Threshold() int {
	return s.threshold
}

// Categorize returns the category for one merchant.
func (s *Service) Categorize(merchant string) string {
	m, ok := Best(merchant, s.vocab.Load(), s.threshold)
	s.metrics.Categorized(ok)
	if !ok {
		return models.OthersCategory
	}
	return m.Category
}

// CategorizeAll fills Category on every transaction against one snapshot.
func (s *Service) CategorizeAll(txns []models.Transaction) {
	vocab := s.vocab.Load()
	for i := range txns {
		m, ok := Best(txns[i].Merchant, vocab, s.threshold)
		s.metrics.Categorized(ok)
		if ok {
			txns[i].Category = m.Category
		} else {
			txns[i].Category = models.OthersCategory
		}
	}
}

// AddCorrection maps merchant to category and persists the vocabulary. The
// new snapshot is published only after the store accepted it. Corrections are
// refused while the store is unreadable so a save cannot erase entries that
// failed to load.
func (s *Service) AddCorrection(ctx context.Context, merchant, category string) error {
	canonical, ok := s.allowed[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadErr != nil {
		return fmt.Errorf("%w: %w", ErrPersist, s.loadErr)
	}

	next, err := AddCorrection(merchant, canonical, s.vocab.Load())
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, next.Entries()); err != nil {
		logger.FromContext(ctx).Error("correction not saved", "merchant", merchant, "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.vocab.Store(next)
	logger.FromContext(ctx).Info("correction saved", "merchant", NormalizeKey(merchant), "category", canonical)
	return nil
}
