// Package observability provides Prometheus metrics for the bot.
package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	AnalysesTotal     *prometheus.CounterVec
	AnalysisErrors    *prometheus.CounterVec
	HoneypotsDetected prometheus.Counter
	UpstreamLatency   *prometheus.HistogramVec
	TelegramUpdates   *prometheus.CounterVec
	BroadcastMessages *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers all metrics on reg. A nil reg uses the default registry.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if namespace == "" {
		namespace = "tokenscout"
	}

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	factory := promauto.With(registerer)

	return &Metrics{
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed token analyses by tier",
		}, []string{"tier"}),
		AnalysisErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_errors_total",
			Help:      "Failed token analyses by reason",
		}, []string{"reason"}),
		HoneypotsDetected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "honeypots_detected_total",
			Help:      "Analyses where the honeypot flag was set",
		}),
		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of upstream lookups by provider",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider", "outcome"}),
		TelegramUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telegram_updates_total",
			Help:      "Telegram updates received by kind",
		}, []string{"kind"}),
		BroadcastMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_messages_total",
			Help:      "Broadcast messages by result",
		}, []string{"result"}),
		gatherer: gatherer,
	}
}

// ObserveAnalysis counts a finished analysis
func (m *Metrics) ObserveAnalysis(tier string, honeypot bool) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(tier).Inc()
	if honeypot {
		m.HoneypotsDetected.Inc()
	}
}

// ObserveError counts a failed analysis
func (m *Metrics) ObserveError(reason string) {
	if m == nil {
		return
	}
	m.AnalysisErrors.WithLabelValues(reason).Inc()
}

// ObserveUpstream records the latency of one provider call
func (m *Metrics) ObserveUpstream(provider string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamLatency.WithLabelValues(provider, outcome).Observe(time.Since(started).Seconds())
}

// ObserveUpdate counts an incoming Telegram update
func (m *Metrics) ObserveUpdate(kind string) {
	if m == nil {
		return
	}
	m.TelegramUpdates.WithLabelValues(kind).Inc()
}

// ObserveBroadcast counts one broadcast delivery attempt
func (m *Metrics) ObserveBroadcast(err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.BroadcastMessages.WithLabelValues(result).Inc()
}

// Handler returns the /metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Push replaces the metrics of job on the Pushgateway at url with the current
// registry contents. Used by short-lived commands that nobody scrapes.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if m == nil {
		return errors.New("push: nil metrics")
	}
	return push.New(url, job).Gatherer(m.gatherer).PushContext(ctx)
}
