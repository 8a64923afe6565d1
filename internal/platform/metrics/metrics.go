package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the process collectors. Each instance has its own registry so
// tests can build servers side by side.
type Metrics struct {
	Registry *prometheus.Registry

	instructions        *prometheus.CounterVec
	instructionDuration *prometheus.HistogramVec
	httpRequests        *prometheus.CounterVec
	rateLimited         prometheus.Counter
	outboxRelayed       prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		instructions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "metamarket",
				Subsystem: "program",
				Name:      "instructions_total",
				Help:      "Total number of processed program instructions.",
			},
			[]string{"instruction", "outcome"},
		),
		instructionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "metamarket",
				Subsystem: "program",
				Name:      "instruction_duration_seconds",
				Help:      "Duration of program instruction processing.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
			},
			[]string{"instruction"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "metamarket",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "metamarket",
				Subsystem: "http",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the submit rate limiter.",
			},
		),
		outboxRelayed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "metamarket",
				Subsystem: "outbox",
				Name:      "relayed_total",
				Help:      "Outbox events published to the bus.",
			},
		),
	}
	m.Registry.MustRegister(
		m.instructions,
		m.instructionDuration,
		m.httpRequests,
		m.rateLimited,
		m.outboxRelayed,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// ObserveInstruction implements the program's InstructionObserver port.
func (m *Metrics) ObserveInstruction(instruction string, outcome string, duration time.Duration) {
	m.instructions.WithLabelValues(instruction, outcome).Inc()
	m.instructionDuration.WithLabelValues(instruction).Observe(duration.Seconds())
}

func (m *Metrics) ObserveHTTP(method string, route string, status int) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) RateLimited() {
	m.rateLimited.Inc()
}

func (m *Metrics) OutboxRelayed(count int) {
	m.outboxRelayed.Add(float64(count))
}

// Handler returns an HTTP handler exposing the registered collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
