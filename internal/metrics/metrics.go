package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rifas_reservations_total",
			Help: "Reservation attempts by result",
		},
		[]string{"result"},
	)

	reservedNumbers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rifas_reserved_numbers_total",
			Help: "Raffle numbers moved to reserved",
		},
	)

	verificationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rifas_verifications_total",
			Help: "Payment verifications by target status and result",
		},
		[]string{"status", "result"},
	)

	proofTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rifas_proofs_submitted_total",
			Help: "Payment proofs attached to payments",
		},
	)

	httpReqTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpReqDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "HTTP request duration in ms",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"path", "method"},
	)
)

// RecordReservation counts a reservation attempt; result is "success",
// "unavailable", "not_found", "invalid" or "error".
func RecordReservation(result string, numbers int) {
	reservationTotal.WithLabelValues(result).Inc()
	if result == "success" {
		reservedNumbers.Add(float64(numbers))
	}
}

func RecordVerification(status, result string) {
	verificationTotal.WithLabelValues(status, result).Inc()
}

func RecordProof() { proofTotal.Inc() }

// HTTPMiddleware records count and latency per route pattern.
func HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpReqDuration.WithLabelValues(path, c.Request.Method).Observe(float64(time.Since(start).Milliseconds()))
		httpReqTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
