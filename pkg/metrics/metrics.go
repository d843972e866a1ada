// Package metrics exposes Prometheus instrumentation for the signal
// exchange and the device runtime.
//
// All recording methods are safe on a nil receiver, so components can
// hold an optional *Exchange or *Runtime without nil checks.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mash_logic"

// Exchange holds the exchanger metrics.
type Exchange struct {
	settles     prometheus.Counter
	rounds      prometheus.Histogram
	duration    prometheus.Histogram
	pushes      *prometheus.CounterVec
	changed     *prometheus.CounterVec
	invocations *prometheus.CounterVec
	roundLimit  prometheus.Counter
}

// NewExchange creates the exchanger metrics and registers them with reg.
func NewExchange(reg prometheus.Registerer) (*Exchange, error) {
	m := &Exchange{
		settles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "settles_total",
			Help:      "Total number of completed settles",
		}),
		rounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "settle_rounds",
			Help:      "Rounds needed to reach quiescence",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 16, 32, 64},
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "settle_duration_seconds",
			Help:      "Time spent settling the graph after a stimulus",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "pushes_total",
			Help:      "Total number of target pushes by signal kind",
		}, []string{"kind"}),
		changed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "target_changes_total",
			Help:      "Total number of pushes that changed their target, by signal kind",
		}, []string{"kind"}),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "invocations_total",
			Help:      "Total number of TargetsChanged calls by device class",
		}, []string{"class"}),
		roundLimit: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "round_limit_failures_total",
			Help:      "Total number of settles aborted by the round limit",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.settles, m.rounds, m.duration, m.pushes, m.changed, m.invocations, m.roundLimit,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveSettle records a completed settle.
func (m *Exchange) ObserveSettle(rounds int, d time.Duration) {
	if m == nil {
		return
	}
	m.settles.Inc()
	m.rounds.Observe(float64(rounds))
	m.duration.Observe(d.Seconds())
}

// ObservePush records one push along a connection of the given kind.
func (m *Exchange) ObservePush(kind string, changed bool) {
	if m == nil {
		return
	}
	m.pushes.WithLabelValues(kind).Inc()
	if changed {
		m.changed.WithLabelValues(kind).Inc()
	}
}

// ObserveInvoke records one TargetsChanged call.
func (m *Exchange) ObserveInvoke(class string) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(class).Inc()
}

// ObserveRoundLimit records a settle aborted by the round limit.
func (m *Exchange) ObserveRoundLimit() {
	if m == nil {
		return
	}
	m.roundLimit.Inc()
}

// Runtime holds device runtime metrics.
type Runtime struct {
	running *prometheus.GaugeVec
	exits   *prometheus.CounterVec
}

// NewRuntime creates the runtime metrics and registers them with reg.
func NewRuntime(reg prometheus.Registerer) (*Runtime, error) {
	m := &Runtime{
		running: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "runtime",
			Name:      "devices_running",
			Help:      "Number of device tasks currently running, by class",
		}, []string{"class"}),
		exits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "runtime",
			Name:      "device_exits_total",
			Help:      "Total number of device task exits, by class",
		}, []string{"class"}),
	}
	if err := reg.Register(m.running); err != nil {
		return nil, err
	}
	if err := reg.Register(m.exits); err != nil {
		return nil, err
	}
	return m, nil
}

// DeviceStarted records a device task start.
func (m *Runtime) DeviceStarted(class string) {
	if m == nil {
		return
	}
	m.running.WithLabelValues(class).Inc()
}

// DeviceExited records a device task exit.
func (m *Runtime) DeviceExited(class string) {
	if m == nil {
		return
	}
	m.running.WithLabelValues(class).Dec()
	m.exits.WithLabelValues(class).Inc()
}

// Handler returns an HTTP handler serving the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
