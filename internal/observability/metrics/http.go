package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics captures low-cardinality HTTP server metrics.
type HTTPMetrics struct {
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// NewHTTPMetrics creates and registers HTTP metrics instruments.
func NewHTTPMetrics(registry *prometheus.Registry) (*HTTPMetrics, error) {
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_server_duration_seconds",
		Help:    "HTTP request duration by route and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status_code"})
	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_server_in_flight",
		Help: "In-flight HTTP requests.",
	})

	if err := registry.Register(requestDuration); err != nil {
		return nil, err
	}
	if err := registry.Register(inFlight); err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		requestDuration: requestDuration,
		inFlight:        inFlight,
	}, nil
}

// GinMiddleware records request duration and in-flight metrics.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		m.inFlight.Inc()
		start := time.Now()
		c.Next()
		m.inFlight.Dec()

		route := strings.TrimSpace(c.FullPath())
		if route == "" {
			route = "unknown"
		}
		m.requestDuration.
			WithLabelValues(route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
