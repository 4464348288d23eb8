package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AuctionMetrics records bidding and lifecycle activity. A nil receiver is a no-op so tests
// and tools can skip registration.
type AuctionMetrics struct {
	bids           *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	notifications  *prometheus.CounterVec
	notifyFailures prometheus.Counter
	sweepDuration  prometheus.Histogram
}

// New registers the auction collectors on reg.
func New(reg prometheus.Registerer) *AuctionMetrics {
	if reg == nil {
		return nil
	}
	m := &AuctionMetrics{
		bids: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bids_total",
			Help: "Bid attempts by outcome.",
		}, []string{"outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bid_rejections_total",
			Help: "Rejected bids by reason.",
		}, []string{"reason"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_transitions_total",
			Help: "Auction status transitions by target status.",
		}, []string{"status"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Notifications written by kind.",
		}, []string{"kind"}),
		notifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Notifications that could not be written.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sweep_duration_seconds",
			Help:    "Duration of the expired auction sweep.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.bids, m.rejections, m.transitions, m.notifications, m.notifyFailures, m.sweepDuration)
	return m
}

func (m *AuctionMetrics) BidAccepted() {
	if m == nil {
		return
	}
	m.bids.WithLabelValues("accepted").Inc()
}

func (m *AuctionMetrics) BidRejected(reason string) {
	if m == nil {
		return
	}
	m.bids.WithLabelValues("rejected").Inc()
	m.rejections.WithLabelValues(reason).Inc()
}

func (m *AuctionMetrics) Transition(status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(status).Inc()
}

func (m *AuctionMetrics) NotificationCreated(kind string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind).Inc()
}

func (m *AuctionMetrics) NotificationFailed() {
	if m == nil {
		return
	}
	m.notifyFailures.Inc()
}

func (m *AuctionMetrics) ObserveSweep(d time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(d.Seconds())
}
