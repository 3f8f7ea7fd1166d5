package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCounter counts HTTP requests by route template.
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "islapos_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "islapos_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// EdgeEvents counts ingested gateway events by outcome (accepted, duplicate).
	EdgeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "islapos_edge_events_total",
			Help: "Edge gateway events by ingestion outcome",
		},
		[]string{"outcome"},
	)

	// KDSTransitions counts kitchen display bump/recall attempts.
	KDSTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "islapos_kds_transitions_total",
			Help: "Kitchen display transitions by action and result",
		},
		[]string{"action", "result"},
	)

	PairingCodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "islapos_edge_pairing_codes_total",
			Help: "Pairing codes by lifecycle step (issued, redeemed, expired)",
		},
		[]string{"step"},
	)

	WipeUserFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "islapos_wipe_user_delete_failures_total",
			Help: "Identity deletions that failed during a full wipe",
		},
	)
)

// Middleware records request count and latency. Labels use the route
// template, never the raw path.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		labels := []string{c.Method(), route, strconv.Itoa(status)}
		RequestCounter.WithLabelValues(labels...).Inc()
		RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler exposes the default registry for scraping.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
