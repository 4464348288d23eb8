package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHub()
	go h.Run(ctx)
	return h
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatalf("client %s got nothing", c.ID)
		return nil
	}
}

func TestBroadcastReachesOnlyTheAuctionGroup(t *testing.T) {
	h := startHub(t)
	a1 := NewClient(h, nil, "auction-1", "", "a1")
	a2 := NewClient(h, nil, "auction-1", "user", "a2")
	b := NewClient(h, nil, "auction-2", "", "b")
	for _, c := range []*Client{a1, a2, b} {
		h.RegisterClient(c)
	}
	require.Eventually(t, func() bool { return h.Subscribers("auction-1") == 2 }, time.Second, 5*time.Millisecond)

	h.BroadcastMessageToAuction("auction-1", []byte(`{"type":"server_auction_update"}`))
	assert.JSONEq(t, `{"type":"server_auction_update"}`, string(receive(t, a1)))
	assert.JSONEq(t, `{"type":"server_auction_update"}`, string(receive(t, a2)))
	assert.Empty(t, b.Send)
}

func TestUnregisterClosesQueue(t *testing.T) {
	h := startHub(t)
	c := NewClient(h, nil, "auction-1", "", "c")
	h.RegisterClient(c)
	require.Eventually(t, func() bool { return h.Subscribers("auction-1") == 1 }, time.Second, 5*time.Millisecond)

	h.UnregisterClient(c)
	require.Eventually(t, func() bool { return h.Subscribers("auction-1") == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)

	// a second unregister and a late direct send are both ignored
	h.UnregisterClient(c)
	h.SendToClient(c, []byte("late"))
	h.BroadcastMessageToAuction("auction-1", []byte("nobody"))
	time.Sleep(20 * time.Millisecond)
}

func TestSlowClientIsDropped(t *testing.T) {
	h := startHub(t)
	slow := &Client{Hub: h, Send: make(chan []byte, 1), AuctionID: "auction-1", ID: "slow"}
	h.RegisterClient(slow)
	require.Eventually(t, func() bool { return h.Subscribers("auction-1") == 1 }, time.Second, 5*time.Millisecond)

	h.BroadcastMessageToAuction("auction-1", []byte("one"))
	h.BroadcastMessageToAuction("auction-1", []byte("two"))
	require.Eventually(t, func() bool { return h.Subscribers("auction-1") == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "one", string(<-slow.Send))
}

func TestSendToClient(t *testing.T) {
	h := startHub(t)
	c := NewClient(h, nil, "auction-1", "", "c")
	other := NewClient(h, nil, "auction-1", "", "other")
	h.RegisterClient(c)
	h.RegisterClient(other)
	require.Eventually(t, func() bool { return h.Subscribers("auction-1") == 2 }, time.Second, 5*time.Millisecond)

	h.SendToClient(c, []byte("just you"))
	assert.Equal(t, "just you", string(receive(t, c)))
	assert.Empty(t, other.Send)
}

func TestRunClosesClientsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	c := NewClient(h, nil, "auction-1", "", "c")
	h.RegisterClient(c)
	require.Eventually(t, func() bool { return h.Subscribers("auction-1") == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	_, open := <-c.Send
	assert.False(t, open)
	assert.Zero(t, h.Subscribers("auction-1"))
}
