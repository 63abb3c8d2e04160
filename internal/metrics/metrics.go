// Package metrics counts what the analytics packages did during a run.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rustyeddy/chartkit/viewport"
)

// Metrics holds the Prometheus collectors for one process. They live on a
// private registry so tests and embedded use never collide with the
// global one.
type Metrics struct {
	Registry *prometheus.Registry

	CandlesLoaded         prometheus.Counter
	IndicatorComputations *prometheus.CounterVec // labels: indicator
	IndicatorErrors       *prometheus.CounterVec // labels: indicator
	IndicatorComputeDur   prometheus.Histogram
	PatternDetections     *prometheus.CounterVec // labels: pattern
	ViewportDecisions     *prometheus.CounterVec // labels: result=accepted|rejected
	DrawingsLoaded        prometheus.Counter
	DrawingsDropped       prometheus.Counter
}

// NewMetrics registers and returns all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		CandlesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chartkit_candles_loaded_total",
			Help: "Candles read from files or SQLite",
		}),
		IndicatorComputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chartkit_indicator_computations_total",
			Help: "Indicator series computed (by indicator)",
		}, []string{"indicator"}),
		IndicatorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chartkit_indicator_errors_total",
			Help: "Indicator requests that failed (by indicator)",
		}, []string{"indicator"}),
		IndicatorComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chartkit_indicator_compute_duration_seconds",
			Help:    "Indicator computation latency per series",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}),
		PatternDetections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chartkit_pattern_detections_total",
			Help: "Pattern occurrences found (by pattern)",
		}, []string{"pattern"}),
		ViewportDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chartkit_viewport_decisions_total",
			Help: "Viewport ranges accepted or rejected by the candle limits",
		}, []string{"result"}),
		DrawingsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chartkit_drawings_loaded_total",
			Help: "Drawings decoded successfully",
		}),
		DrawingsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chartkit_drawings_dropped_total",
			Help: "Invalid drawings dropped on load",
		}),
	}

	m.Registry.MustRegister(
		m.CandlesLoaded,
		m.IndicatorComputations,
		m.IndicatorErrors,
		m.IndicatorComputeDur,
		m.PatternDetections,
		m.ViewportDecisions,
		m.DrawingsLoaded,
		m.DrawingsDropped,
	)
	return m
}

// ObserveIndicator records one Compute call.
func (m *Metrics) ObserveIndicator(id string, start time.Time, err error) {
	if err != nil {
		m.IndicatorErrors.WithLabelValues(id).Inc()
		return
	}
	m.IndicatorComputations.WithLabelValues(id).Inc()
	m.IndicatorComputeDur.Observe(time.Since(start).Seconds())
}

// ObserveViewport is shaped for viewport.Controller.OnDecision.
func (m *Metrics) ObserveViewport(d viewport.Decision) {
	result := "rejected"
	if d.Accepted {
		result = "accepted"
	}
	m.ViewportDecisions.WithLabelValues(result).Inc()
}

// Summary renders every non-zero counter as "name{labels} value" lines,
// sorted by name. Histograms report their sample count.
func (m *Metrics) Summary() ([]string, error) {
	families, err := m.Registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var out []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			var v float64
			switch {
			case metric.GetCounter() != nil:
				v = metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				v = float64(metric.GetHistogram().GetSampleCount())
			default:
				continue
			}
			if v == 0 {
				continue
			}

			var labels []string
			for _, lp := range metric.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			out = append(out, fmt.Sprintf("%s %g", name, v))
		}
	}
	sort.Strings(out)
	return out, nil
}
