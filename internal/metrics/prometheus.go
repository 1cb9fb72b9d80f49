package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service collectors.
type Metrics struct {
	timings   *prometheus.SummaryVec
	toolCalls *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		timings: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Namespace:  "cryptochat",
				Name:       "http_request_duration_seconds",
				Help:       "Per route request timing",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"route"},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cryptochat",
				Name:      "tool_calls_total",
				Help:      "Tool calls requested by the model",
			},
			[]string{"tool", "outcome"},
		),
	}
	reg.MustRegister(m.timings, m.toolCalls)
	return m
}

// TimeTracking observes request latency per matched route.
func (m *Metrics) TimeTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.timings.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ToolCall counts one dispatched tool call.
func (m *Metrics) ToolCall(tool, outcome string) {
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}
