package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register;
// the helpers below no-op until then.
var (
	regOK atomic.Bool

	taskStarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aicam",
			Subsystem: "task",
			Name:      "starts_total",
			Help:      "Number of successful task launches.",
		}, []string{"name"},
	)
	taskStops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aicam",
			Subsystem: "task",
			Name:      "stops_total",
			Help:      "Number of observed task exits (clean, stopped, or killed).",
		}, []string{"name"},
	)
	taskFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aicam",
			Subsystem: "task",
			Name:      "failures_total",
			Help:      "Number of launch failures and unexpected exits.",
		}, []string{"name"},
	)
	runDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aicam",
			Subsystem: "task",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of completed task runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 10),
		}, []string{"name"},
	)
	stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aicam",
			Subsystem: "task",
			Name:      "state_transitions_total",
			Help:      "Lifecycle state transitions per task.",
		}, []string{"name", "from", "to"},
	)
	currentStates = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "aicam",
			Subsystem: "task",
			Name:      "current_state",
			Help:      "Current lifecycle state per task (1 = active, 0 = inactive).",
		}, []string{"name", "state"},
	)
)

// Register registers all collectors with r. Safe to call more than once.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{taskStarts, taskStops, taskFailures, runDuration, stateTransitions, currentStates}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler serves the default Prometheus gatherer.
func Handler() http.Handler { return promhttp.Handler() }

func IncStart(name string) {
	if regOK.Load() {
		taskStarts.WithLabelValues(name).Inc()
	}
}

func IncStop(name string) {
	if regOK.Load() {
		taskStops.WithLabelValues(name).Inc()
	}
}

func IncFailure(name string) {
	if regOK.Load() {
		taskFailures.WithLabelValues(name).Inc()
	}
}

func ObserveRunDuration(name string, seconds float64) {
	if regOK.Load() {
		runDuration.WithLabelValues(name).Observe(seconds)
	}
}

func RecordStateTransition(name, from, to string) {
	if regOK.Load() {
		stateTransitions.WithLabelValues(name, from, to).Inc()
	}
}

func SetCurrentState(name, state string, active bool) {
	if !regOK.Load() {
		return
	}
	v := 0.0
	if active {
		v = 1.0
	}
	currentStates.WithLabelValues(name, state).Set(v)
}
