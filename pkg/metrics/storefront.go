package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Result labels.
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultRejected = "rejected"
)

// Resolution outcomes besides the resolver levels.
const (
	ResolutionDegraded = "degraded"
)

// StorefrontMetrics records cart mutations and promotion resolutions.
// A nil *StorefrontMetrics is valid and records nothing.
type StorefrontMetrics struct {
	cartOps     *prometheus.CounterVec
	cartLatency *prometheus.HistogramVec
	resolutions *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart operations partitioned by operation and result.",
	}, []string{"op", "result"})
	cartLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_operation_duration_seconds",
		Help:    "Duration of cart operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promotion_resolutions_total",
		Help: "Promotion resolutions partitioned by the level that won.",
	}, []string{"level"})
	reg.MustRegister(cartOps, cartLatency, resolutions)
	return &StorefrontMetrics{
		cartOps:     cartOps,
		cartLatency: cartLatency,
		resolutions: resolutions,
	}
}

// ObserveCartOp counts a finished cart operation and its duration.
func (m *StorefrontMetrics) ObserveCartOp(op, result string, duration time.Duration) {
	if m == nil || m.cartOps == nil {
		return
	}
	op = normalizeLabel(op)
	m.cartOps.WithLabelValues(op, normalizeLabel(result)).Inc()
	m.cartLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// IncResolution counts one promotion resolution.
func (m *StorefrontMetrics) IncResolution(level string) {
	if m == nil || m.resolutions == nil {
		return
	}
	m.resolutions.WithLabelValues(normalizeLabel(level)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
