// Package prometheus implements the host's Prometheus collectors: one set
// for the dispatcher (calls, durations, failures) and one for the loader
// (adapters, handles).
package prometheus

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/omnicall/omnicall/pkg/metrics"
)

// DispatchMetrics records per-function call activity.
type DispatchMetrics struct {
	calls        *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	callErrors   *prometheus.CounterVec
	asyncCalls   *prometheus.CounterVec
	coercions    *prometheus.CounterVec
}

// LoaderMetrics records adapter and handle lifecycle.
type LoaderMetrics struct {
	adaptersInitialized prometheus.Gauge
	handlesLoaded       *prometheus.GaugeVec
	loadErrors          *prometheus.CounterVec
}

var (
	dispatchOnce sync.Once
	dispatch     *DispatchMetrics

	loaderOnce sync.Once
	loaderM    *LoaderMetrics
)

// Dispatch returns the dispatcher collectors, nil when metrics are
// disabled.
func Dispatch() *DispatchMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	dispatchOnce.Do(func() {
		reg := metrics.GetRegistry()
		dispatch = &DispatchMetrics{
			calls: promauto.With(reg).NewCounterVec(
				prometheus.CounterOpts{
					Name: "omnicall_calls_total",
					Help: "Total dispatched calls by function name",
				},
				[]string{"function"},
			),
			callDuration: promauto.With(reg).NewHistogramVec(
				prometheus.HistogramOpts{
					Name: "omnicall_call_duration_milliseconds",
					Help: "Dispatch duration in milliseconds, adapter time included",
					Buckets: []float64{
						0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000,
					},
				},
				[]string{"function"},
			),
			callErrors: promauto.With(reg).NewCounterVec(
				prometheus.CounterOpts{
					Name: "omnicall_call_errors_total",
					Help: "Calls that failed or returned an exception value",
				},
				[]string{"function"},
			),
			asyncCalls: promauto.With(reg).NewCounterVec(
				prometheus.CounterOpts{
					Name: "omnicall_async_calls_total",
					Help: "Awaited calls by function name",
				},
				[]string{"function"},
			),
			coercions: promauto.With(reg).NewCounterVec(
				prometheus.CounterOpts{
					Name: "omnicall_coercions_total",
					Help: "Argument kind coercions by source and destination kind",
				},
				[]string{"from", "to"},
			),
		}
	})
	return dispatch
}

// RecordCall counts one dispatch with its duration.
func (m *DispatchMetrics) RecordCall(function string, durationMs float64) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(function).Inc()
	m.callDuration.WithLabelValues(function).Observe(durationMs)
}

// RecordError counts one failed dispatch.
func (m *DispatchMetrics) RecordError(function string) {
	if m == nil {
		return
	}
	m.callErrors.WithLabelValues(function).Inc()
}

// RecordAsync counts one awaited dispatch.
func (m *DispatchMetrics) RecordAsync(function string) {
	if m == nil {
		return
	}
	m.asyncCalls.WithLabelValues(function).Inc()
}

// RecordCoercion counts one argument coercion.
func (m *DispatchMetrics) RecordCoercion(from, to string) {
	if m == nil {
		return
	}
	m.coercions.WithLabelValues(from, to).Inc()
}

// Loader returns the loader collectors, nil when metrics are disabled.
func Loader() *LoaderMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	loaderOnce.Do(func() {
		reg := metrics.GetRegistry()
		loaderM = &LoaderMetrics{
			adaptersInitialized: promauto.With(reg).NewGauge(
				prometheus.GaugeOpts{
					Name: "omnicall_adapters_initialized",
					Help: "Number of initialized language adapters",
				},
			),
			handlesLoaded: promauto.With(reg).NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "omnicall_handles_loaded",
					Help: "Live handles by adapter tag",
				},
				[]string{"tag"},
			),
			loadErrors: promauto.With(reg).NewCounterVec(
				prometheus.CounterOpts{
					Name: "omnicall_load_errors_total",
					Help: "Failed load operations by adapter tag",
				},
				[]string{"tag"},
			),
		}
	})
	return loaderM
}

// AdapterInitialized moves the adapter gauge.
func (m *LoaderMetrics) AdapterInitialized(delta float64) {
	if m == nil {
		return
	}
	m.adaptersInitialized.Add(delta)
}

// HandleLoaded moves the per-tag handle gauge.
func (m *LoaderMetrics) HandleLoaded(tag string, delta float64) {
	if m == nil {
		return
	}
	m.handlesLoaded.WithLabelValues(tag).Add(delta)
}

// RecordLoadError counts one failed load.
func (m *LoaderMetrics) RecordLoadError(tag string) {
	if m == nil {
		return
	}
	m.loadErrors.WithLabelValues(tag).Inc()
}
