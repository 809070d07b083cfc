// Package metrics exposes prometheus collectors for the prediction server and router.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "modelserve"

var (
	// PredictionsTotal counts /predict outcomes
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Prediction requests by outcome.",
	}, []string{"outcome"})

	// ModelReloadsTotal counts reload ticks by result
	ModelReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_reloads_total",
		Help:      "Model reload ticks by result.",
	}, []string{"result"})

	// ActiveModelTrainedTimestamp is the training time of the active model in unix seconds
	ActiveModelTrainedTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_model_trained_timestamp_seconds",
		Help:      "Training timestamp of the active model, 0 when no model is loaded.",
	})

	// ForwardsTotal counts router forwards by backend, route and status code
	ForwardsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "router",
		Name:      "forwards_total",
		Help:      "Forwarded requests by backend, route and returned status code.",
	}, []string{"backend", "route", "code"})

	// ForwardDuration observes backend round-trip latency
	ForwardDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "router",
		Name:      "forward_duration_seconds",
		Help:      "Backend round-trip latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(
		PredictionsTotal,
		ModelReloadsTotal,
		ActiveModelTrainedTimestamp,
		ForwardsTotal,
		ForwardDuration,
	)
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
