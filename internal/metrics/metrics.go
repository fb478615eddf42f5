package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the call-routing core.
type Metrics struct {
	WebhookEvents   *prometheus.CounterVec // kind: incoming_call, status_update, validation, ignored, rejected
	CallsRouted     prometheus.Counter
	CallsUnrouted   prometheus.Counter // inbound calls left PENDING, nobody available
	CallsMissed     prometheus.Counter
	QuotaLocks      prometheus.Counter
	QuotaResets     prometheus.Counter
	RoutingDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		WebhookEvents: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_webhook_events_total",
			Help: "Total webhook events received, by handling kind",
		}, []string{"kind"}),
		CallsRouted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dispatch_calls_routed_total",
			Help: "Inbound calls assigned to a technician",
		}),
		CallsUnrouted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dispatch_calls_unrouted_total",
			Help: "Inbound calls left pending because no technician was available",
		}),
		CallsMissed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dispatch_calls_missed_total",
			Help: "Calls reported missed by the telephony provider",
		}),
		QuotaLocks: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dispatch_quota_locks_total",
			Help: "Technicians locked for missing the weekly quota",
		}),
		QuotaResets: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "dispatch_quota_resets_total",
			Help: "Weekly quota reset batches executed",
		}),
		RoutingDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "dispatch_routing_duration_seconds",
			Help:    "Duration of the inbound call routing decision",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
