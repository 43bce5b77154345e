package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetup_http_requests_total",
			Help: "Total number of HTTP requests processed by the meetup client.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meetup_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	pollCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "meetup_poll_cycles_total",
			Help: "Total number of completed observation poll cycles.",
		},
	)
	forcedRefetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetup_forced_refetch_total",
			Help: "Total number of out-of-cadence observation re-fetches.",
		},
		[]string{"reason"},
	)
	phaseTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetup_phase_transitions_total",
			Help: "Total number of lifecycle phase transitions.",
		},
		[]string{"from", "to"},
	)
	actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetup_actions_total",
			Help: "Total number of dispatched meeting actions.",
		},
		[]string{"action", "outcome"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "meetup_ws_active_connections",
			Help: "Number of active surface websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meetup_ws_events_total",
			Help: "Total number of surface websocket events.",
		},
		[]string{"event"},
	)
	amqpConsumeErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "meetup_amqp_consume_errors_total",
			Help: "Total number of AMQP change-feed consume errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		pollCyclesTotal,
		forcedRefetchTotal,
		phaseTransitionsTotal,
		actionsTotal,
		wsActiveConnections,
		wsEventsTotal,
		amqpConsumeErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncPollCycle() {
	pollCyclesTotal.Inc()
}

func IncForcedRefetch(reason string) {
	forcedRefetchTotal.WithLabelValues(reason).Inc()
}

func IncPhaseTransition(from, to string) {
	phaseTransitionsTotal.WithLabelValues(from, to).Inc()
}

func IncAction(action, outcome string) {
	actionsTotal.WithLabelValues(action, outcome).Inc()
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func IncAMQPConsumeError() {
	amqpConsumeErrorsTotal.Inc()
}
