package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fund_ledger",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fund_ledger",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fund_ledger",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	deposits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fund_ledger",
			Subsystem: "pool",
			Name:      "deposits_total",
			Help:      "Total number of settled deposits.",
		},
	)

	depositVolume = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fund_ledger",
			Subsystem: "pool",
			Name:      "deposit_volume_total",
			Help:      "Cumulative token amount deposited into the pool.",
		},
	)

	allocations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fund_ledger",
			Subsystem: "pool",
			Name:      "allocations_total",
			Help:      "Total number of program allocations.",
		},
	)

	withdrawals = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fund_ledger",
			Subsystem: "pool",
			Name:      "withdrawals_total",
			Help:      "Total number of settled withdrawals.",
		},
	)

	poolManagedFund = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fund_ledger",
			Subsystem: "pool",
			Name:      "managed_fund",
			Help:      "Cumulative deposits recorded by the ledger.",
		},
	)

	poolAllocated = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fund_ledger",
			Subsystem: "pool",
			Name:      "allocated",
			Help:      "Token amount currently reserved for programs.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		deposits,
		depositVolume,
		allocations,
		withdrawals,
		poolManagedFund,
		poolAllocated,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordDeposit records a settled deposit.
func RecordDeposit(amount int64) {
	deposits.Inc()
	depositVolume.Add(float64(amount))
}

// RecordAllocation records a completed program allocation.
func RecordAllocation() {
	allocations.Inc()
}

// RecordWithdrawal records a settled withdrawal.
func RecordWithdrawal() {
	withdrawals.Inc()
}

// SetPoolTotals publishes the current pool accounting.
func SetPoolTotals(managedFund, allocated int64) {
	poolManagedFund.Set(float64(managedFund))
	poolAllocated.Set(float64(allocated))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func canonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "programs" {
		return "/" + parts[0]
	}
	if len(parts) == 1 {
		return "/programs"
	}
	if len(parts) == 2 {
		return "/programs/:id"
	}
	return "/programs/:id/" + parts[2]
}
