package categorizer

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-ledger/internal/metrics"
	"github.com/insightdelivered/statement-ledger/internal/models"
)

var testCategories = []string{"Food & Dining", "Shopping", "Travel"}

// brokenStore fails the operations it is told to.
type brokenStore struct {
	*MemoryStore
	loadErr error
	saveErr error
}

func (s *brokenStore) Load(ctx context.Context) ([]Entry, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.MemoryStore.Load(ctx)
}

func (s *brokenStore) Save(ctx context.Context, entries []Entry) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.MemoryStore.Save(ctx, entries)
}

func TestService_CorrectionThenCategorize(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(ctx, store, Options{Categories: testCategories})
	require.NoError(t, svc.LoadErr())

	assert.Equal(t, models.OthersCategory, svc.Categorize("Foo Mart"))

	require.NoError(t, svc.AddCorrection(ctx, "Foo Mart", "shopping"))

	assert.Equal(t, "Shopping", svc.Categorize("foo mart"))
	saved, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Merchant: "foo mart", Category: "Shopping"}}, saved)
}

func TestService_UnknownCategory(t *testing.T) {
	ctx := context.Background()
	svc := NewService(ctx, NewMemoryStore(), Options{Categories: testCategories})

	err := svc.AddCorrection(ctx, "Foo Mart", "Crypto")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Zero(t, svc.Snapshot().Len())

	require.NoError(t, svc.AddCorrection(ctx, "Foo Mart", models.OthersCategory))
	assert.Equal(t, []string{"Food & Dining", "Shopping", "Travel", models.OthersCategory}, svc.Categories())
}

func TestService_SaveFailureLeavesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := &brokenStore{MemoryStore: NewMemoryStore(Entry{Merchant: "uber", Category: "Travel"})}
	svc := NewService(ctx, store, Options{Categories: testCategories})
	store.saveErr = errors.New("disk full")

	err := svc.AddCorrection(ctx, "Foo Mart", "Shopping")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersist)
	assert.Contains(t, err.Error(), "disk full")

	assert.Equal(t, 1, svc.Snapshot().Len())
	assert.Equal(t, models.OthersCategory, svc.Categorize("foo mart"))
}

func TestService_LoadFailureDegradesToOthers(t *testing.T) {
	ctx := context.Background()
	store := &brokenStore{MemoryStore: NewMemoryStore(), loadErr: errors.New("permission denied")}
	svc := NewService(ctx, store, Options{Categories: testCategories})

	require.Error(t, svc.LoadErr())
	assert.Equal(t, models.OthersCategory, svc.Categorize("Swiggy"))

	err := svc.AddCorrection(ctx, "Swiggy", "Food & Dining")
	assert.ErrorIs(t, err, ErrPersist)

	store.loadErr = nil
	require.NoError(t, svc.Reload(ctx))
	assert.NoError(t, svc.LoadErr())
	require.NoError(t, svc.AddCorrection(ctx, "Swiggy", "Food & Dining"))
	assert.Equal(t, "Food & Dining", svc.Categorize("SWIGGY ORDER"))
}

func TestService_CategorizeAll(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := NewService(ctx, NewMemoryStore(Entry{Merchant: "swiggy", Category: "Food & Dining"}),
		Options{Categories: testCategories, Metrics: m})

	txns := []models.Transaction{
		{Merchant: "SWIGGY ORDER", Amount: decimal.RequireFromString("452.00")},
		{Merchant: "AMAZON RETAIL", Amount: decimal.RequireFromString("-1152.42")},
	}
	svc.CategorizeAll(txns)

	assert.Equal(t, "Food & Dining", txns[0].Category)
	assert.Equal(t, models.OthersCategory, txns[1].Category)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Categorizations.WithLabelValues(metrics.Matched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Categorizations.WithLabelValues(metrics.Unmatched)))
}

func TestService_DefaultThreshold(t *testing.T) {
	svc := NewService(context.Background(), nil, Options{})
	assert.Equal(t, DefaultThreshold, svc.Threshold())
	assert.Equal(t, []string{models.OthersCategory}, svc.Categories())
}
