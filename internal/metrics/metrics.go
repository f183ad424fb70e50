// Package metrics registers the service's Prometheus instruments and the
// storage observation hook.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus instruments for the service.
type Metrics struct {
	CodesIssued   prometheus.Counter
	Verifications *prometheus.CounterVec
	SalesRecorded prometheus.Counter

	storageWrite  prometheus.Histogram
	storageRead   prometheus.Histogram
	storageCommit prometheus.Histogram
}

// New creates and registers all instruments with reg. Pass
// prometheus.NewRegistry() in tests to avoid default-registry collisions.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CodesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "ezraverify_codes_issued_total",
			Help: "Total number of product codes issued.",
		}),
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ezraverify_verifications_total",
			Help: "Total verification calls by outcome.",
		}, []string{"outcome"}),
		SalesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "ezraverify_sales_recorded_total",
			Help: "Total sale recordings.",
		}),
		storageWrite: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ezraverify_storage_write_seconds",
			Help:    "Latency of single-key storage writes.",
			Buckets: prometheus.DefBuckets,
		}),
		storageRead: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ezraverify_storage_read_seconds",
			Help:    "Latency of single-key storage reads.",
			Buckets: prometheus.DefBuckets,
		}),
		storageCommit: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ezraverify_storage_commit_seconds",
			Help:    "Latency of storage batch commits.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveVerification counts one verification by outcome label.
func (m *Metrics) ObserveVerification(outcome string) {
	m.Verifications.WithLabelValues(outcome).Inc()
}

// StorageHook implements the pebblestore.MetricsHook surface.

func (m *Metrics) ObserveWrite(elapsed time.Duration, _ int) {
	m.storageWrite.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRead(elapsed time.Duration, _ int) {
	m.storageRead.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveBatchCommit(elapsed time.Duration, _ int) {
	m.storageCommit.Observe(elapsed.Seconds())
}
