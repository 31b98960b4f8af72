package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores Prometheus del servicio de sesiones.
type Metrics struct {
	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SessionOps      *prometheus.CounterVec
}

// NewMetrics registra y devuelve las metricas del servicio.
func NewMetrics(namespace string) *Metrics {
	requestCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	sessionOps := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "operations_total",
			Help:      "Session operations by type and outcome",
		},
		[]string{"operation", "outcome"},
	)

	for _, c := range []prometheus.Collector{requestCount, requestDuration, sessionOps} {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}

	return &Metrics{
		RequestCount:    requestCount,
		RequestDuration: requestDuration,
		SessionOps:      sessionOps,
	}
}

// ObserveSessionOp registra el resultado de una operacion de sesion.
func (m *Metrics) ObserveSessionOp(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.SessionOps.WithLabelValues(operation, outcome).Inc()
}

// Handler expone el endpoint /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
