// Package metrics holds the Prometheus collectors for statement conversion.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Document outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeNoTransactions = "no_transactions"
	OutcomeFailed         = "failed"
)

// Categorization outcomes.
const (
	Matched   = "matched"
	Unmatched = "unmatched"
)

// Metrics groups the conversion counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Pages           *prometheus.CounterVec
	PageFailures    prometheus.Counter
	Documents       *prometheus.CounterVec
	OCRRuns         *prometheus.CounterVec
	Categorizations *prometheus.CounterVec
	Duration        prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "pages_total",
			Help:      "Pages processed, by the strategy that produced rows.",
		}, []string{"strategy"}),
		PageFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "page_failures_total",
			Help:      "Pages whose extraction failed.",
		}),
		Documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "documents_total",
			Help:      "Documents processed, by outcome.",
		}, []string{"outcome"}),
		OCRRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "ocr_runs_total",
			Help:      "OCR fallback runs, by result.",
		}, []string{"result"}),
		Categorizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "categorizations_total",
			Help:      "Merchant categorizations, by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "document_duration_seconds",
			Help:      "Time spent extracting one document.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Pages, m.PageFailures, m.Documents, m.OCRRuns, m.Categorizations, m.Duration)
	}
	return m
}

func (m *Metrics) PageDone(strategy string) {
	if m == nil {
		return
	}
	if strategy == "" {
		strategy = "none"
	}
	m.Pages.WithLabelValues(strategy).Inc()
}

func (m *Metrics) PageFailed() {
	if m == nil {
		return
	}
	m.PageFailures.Inc()
}

func (m *Metrics) DocumentDone(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Documents.WithLabelValues(outcome).Inc()
	m.Duration.Observe(seconds)
}

func (m *Metrics) OCRRun(result string) {
	if m == nil {
		return
	}
	m.OCRRuns.WithLabelValues(result).Inc()
}

func (m *Metrics) Categorized(matched bool) {
	if m == nil {
		return
	}
	outcome := Unmatched
	if matched {
		outcome = Matched
	}
	m.Categorizations.WithLabelValues(outcome).Inc()
}
