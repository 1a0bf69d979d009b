// Package metrics exposes Prometheus counters and histograms for the ledger.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/stocktrading/pkg/logger"
)

// Metrics is the collector set for one service instance.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration prometheus.Histogram

	TransactionsApplied  *prometheus.CounterVec
	TransactionsReversed prometheus.Counter
	OrdersTotal          *prometheus.CounterVec
	QuoteLookupsTotal    *prometheus.CounterVec
	QuoteLookupDuration  prometheus.Histogram
	SnapshotsRecorded    prometheus.Counter
}

// New creates the collector set namespaced under the service name.
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		TransactionsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "transactions_applied_total",
			Help:      "Ledger transactions applied, by type",
		}, []string{"type"}),
		TransactionsReversed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "transactions_reversed_total",
			Help:      "Ledger transactions reversed",
		}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "orders_total",
			Help:      "Orders processed, by terminal status",
		}, []string{"status"}),
		QuoteLookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "quote_lookups_total",
			Help:      "Quote source lookups, by outcome",
		}, []string{"outcome"}),
		QuoteLookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "quote_lookup_duration_seconds",
			Help:      "Quote source lookup duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SnapshotsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stocktrading",
			Subsystem: serviceName,
			Name:      "snapshots_recorded_total",
			Help:      "Performance snapshots recorded",
		}),
	}
}

// Register registers all collectors with the default registry.
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TransactionsApplied,
		m.TransactionsReversed,
		m.OrdersTotal,
		m.QuoteLookupsTotal,
		m.QuoteLookupDuration,
		m.SnapshotsRecorded,
	}
	for _, c := range collectors {
		if err := prometheus.DefaultRegisterer.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// StartHTTPServer serves the Prometheus endpoint on its own port.
func StartHTTPServer(port int, path string) {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "starting metrics server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error(context.Background(), "metrics server stopped", "error", err)
		}
	}()
}
