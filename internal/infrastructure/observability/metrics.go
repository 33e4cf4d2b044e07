package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry           *prometheus.Registry
	ActiveSession      prometheus.Gauge
	EventsTotal        *prometheus.CounterVec
	SessionsSavedTotal prometheus.Counter
	CapturesTotal      *prometheus.CounterVec
	CaptureErrorsTotal *prometheus.CounterVec
	EvictionsTotal     *prometheus.CounterVec
	StoreBytes         prometheus.Gauge
}

func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		ActiveSession: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "second_brain",
			Name:      "active_session",
			Help:      "Whether a browsing session is currently open",
		}),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "second_brain",
			Name:      "tab_events_total",
			Help:      "Total tab events recorded",
		}, []string{"type"}),
		SessionsSavedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "second_brain",
			Name:      "sessions_saved_total",
			Help:      "Total sessions persisted",
		}),
		CapturesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "second_brain",
			Name:      "captures_total",
			Help:      "Total captures produced by kind",
		}, []string{"kind"}),
		CaptureErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "second_brain",
			Name:      "capture_errors_total",
			Help:      "Total capture failures by kind and stage",
		}, []string{"kind", "stage"}),
		EvictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "second_brain",
			Name:      "evictions_total",
			Help:      "Total records evicted from bounded collections",
		}, []string{"collection"}),
		StoreBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "second_brain",
			Name:      "store_bytes",
			Help:      "Bytes in use in the local store",
		}),
	}
	r.MustRegister(m.ActiveSession, m.EventsTotal, m.SessionsSavedTotal, m.CapturesTotal, m.CaptureErrorsTotal, m.EvictionsTotal, m.StoreBytes)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
