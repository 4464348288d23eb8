package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAuctionMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.BidAccepted()
	m.BidRejected("below_minimum")
	m.BidRejected("below_minimum")
	m.Transition("sold")
	m.NotificationCreated("info")
	m.NotificationFailed()
	m.ObserveSweep(time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.bids.WithLabelValues("accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.bids.WithLabelValues("rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rejections.WithLabelValues("below_minimum")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("sold")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifyFailures))
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *AuctionMetrics
	assert.NotPanics(t, func() {
		m.BidAccepted()
		m.BidRejected("x")
		m.Transition("ended")
		m.NotificationCreated("info")
		m.NotificationFailed()
		m.ObserveSweep(time.Second)
	})
	assert.Nil(t, New(nil))
}
