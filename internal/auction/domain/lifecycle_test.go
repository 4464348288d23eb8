package domain

import (
	"testing"
	"time"

	"github.com/cristianortiz/harvestBid/internal/shared/apperr"
	"github.com/cristianortiz/harvestBid/internal/shared/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSellsToHighestBid(t *testing.T) {
	a := newTestAuction(t, 50)
	bids := []*Bid{
		bidAt(a, 100, base.Add(time.Minute)),
		bidAt(a, 150, base.Add(2*time.Minute)),
		bidAt(a, 120, base.Add(3*time.Minute)),
	}
	l := NewLifecycle(clock.NewFixed(a.EndTime.Add(time.Second)), PolicyAutoSell)

	r := l.Resolve(a, bids)

	require.True(t, r.Changed)
	assert.Equal(t, StatusSold, r.Auction.Status)
	require.NotNil(t, r.Auction.WinningBid)
	assert.Equal(t, int64(150), *r.Auction.WinningBid)
	assert.Equal(t, bids[1].BidderID, *r.Auction.WinningBidderID)
	assert.Same(t, bids[1], r.WinningBid)
	assert.Equal(t, StatusActive, a.Status, "input must stay untouched")
}

func TestResolveWithoutBidsEnds(t *testing.T) {
	a := newTestAuction(t, 50)
	l := NewLifecycle(clock.NewFixed(a.EndTime), PolicyAutoSell)

	r := l.Resolve(a, nil)

	require.True(t, r.Changed)
	assert.Equal(t, StatusEnded, r.Auction.Status)
	assert.Nil(t, r.Auction.WinningBid)
	assert.Nil(t, r.Auction.WinningBidderID)
	assert.Nil(t, r.WinningBid)
}

func TestResolveBeforeEndTimeIsUnchanged(t *testing.T) {
	a := newTestAuction(t, 50)
	l := NewLifecycle(clock.NewFixed(a.EndTime.Add(-time.Nanosecond)), PolicyAutoSell)

	r := l.Resolve(a, []*Bid{bidAt(a, 100, base)})

	assert.False(t, r.Changed)
	assert.Equal(t, StatusActive, r.Auction.Status)
	assert.NotSame(t, a, r.Auction)
}

func TestResolveIsIdempotent(t *testing.T) {
	a := newTestAuction(t, 50)
	bids := []*Bid{bidAt(a, 100, base)}
	fc := clock.NewFixed(a.EndTime.Add(time.Hour))
	l := NewLifecycle(fc, PolicyAutoSell)

	first := l.Resolve(a, bids)
	require.True(t, first.Changed)

	fc.Advance(time.Hour)
	second := l.Resolve(first.Auction, bids)
	assert.False(t, second.Changed)
	assert.Nil(t, second.WinningBid)
	assert.Equal(t, first.Auction, second.Auction)
}

func TestResolveTerminalStatusesAreUnchanged(t *testing.T) {
	for _, st := range []AuctionStatus{StatusEnded, StatusSold, StatusCompleted, StatusRejected} {
		a := newTestAuction(t, 50)
		a.Status = st
		l := NewLifecycle(clock.NewFixed(a.EndTime.Add(time.Hour)), PolicyAutoSell)
		r := l.Resolve(a, []*Bid{bidAt(a, 100, base)})
		assert.False(t, r.Changed, st)
		assert.Equal(t, st, r.Auction.Status)
	}
}

func TestResolveOwnerDecisionPolicyEndsWithBids(t *testing.T) {
	a := newTestAuction(t, 50)
	l := NewLifecycle(clock.NewFixed(a.EndTime), PolicyOwnerDecision)

	r := l.Resolve(a, []*Bid{bidAt(a, 100, base)})

	require.True(t, r.Changed)
	assert.Equal(t, StatusEnded, r.Auction.Status)
	assert.Nil(t, r.WinningBid)
	assert.Nil(t, r.Auction.WinningBid)
}

func TestHighestBidTieBreak(t *testing.T) {
	a := newTestAuction(t, 50)
	early := bidAt(a, 200, base.Add(time.Minute))
	late := bidAt(a, 200, base.Add(2*time.Minute))
	low := bidAt(a, 150, base)

	assert.Same(t, early, HighestBid([]*Bid{late, low, early}))
	assert.Same(t, early, HighestBid([]*Bid{early, late, low}))

	same1 := NewBid(uuid.MustParse("00000000-0000-0000-0000-000000000001"), a.ID, uuid.New(), 300, base)
	same2 := NewBid(uuid.MustParse("00000000-0000-0000-0000-000000000002"), a.ID, uuid.New(), 300, base)
	assert.Same(t, same1, HighestBid([]*Bid{same2, same1}))

	assert.Nil(t, HighestBid(nil))
	assert.Equal(t, int64(0), HighestAmount(nil))
}

func endedAuction(t *testing.T) (*Auction, []*Bid, *Lifecycle) {
	t.Helper()
	a := newTestAuction(t, 50)
	bids := []*Bid{bidAt(a, 100, base), bidAt(a, 140, base.Add(time.Minute))}
	l := NewLifecycle(clock.NewFixed(a.EndTime.Add(time.Hour)), PolicyOwnerDecision)
	a = l.Resolve(a, bids).Auction
	require.Equal(t, StatusEnded, a.Status)
	return a, bids, l
}

func TestDecideAccept(t *testing.T) {
	a, bids, l := endedAuction(t)

	out, err := l.Decide(a, bids, DecisionAccept, bids[0].ID)

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, out.Auction.Status)
	assert.Equal(t, int64(100), *out.Auction.WinningBid)
	assert.Equal(t, bids[0].BidderID, *out.Auction.WinningBidderID)
	assert.Same(t, bids[0], out.AcceptedBid)
	require.NotNil(t, out.Auction.DecidedAt)
	assert.Equal(t, StatusEnded, a.Status)
}

func TestDecideReject(t *testing.T) {
	a, bids, l := endedAuction(t)

	out, err := l.Decide(a, bids, DecisionReject, uuid.Nil)

	require.NoError(t, err)
	assert.Equal(t, StatusRejected, out.Auction.Status)
	assert.Nil(t, out.Auction.WinningBid)
	assert.Nil(t, out.AcceptedBid)
}

func TestDecideUnknownBid(t *testing.T) {
	a, bids, l := endedAuction(t)
	foreign := NewBid(uuid.New(), uuid.New(), uuid.New(), 999, base)

	_, err := l.Decide(a, append(bids, foreign), DecisionAccept, foreign.ID)
	assert.ErrorIs(t, err, ErrBidNotFound)

	_, err = l.Decide(a, bids, DecisionAccept, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDecideRequiresEndedStatus(t *testing.T) {
	a := newTestAuction(t, 50)
	bids := []*Bid{bidAt(a, 100, base)}

	running := NewLifecycle(clock.NewFixed(base.Add(time.Hour)), PolicyAutoSell)
	for _, action := range []Decision{DecisionAccept, DecisionReject} {
		_, err := running.Decide(a, bids, action, bids[0].ID)
		assert.ErrorIs(t, err, ErrAuctionNotEnded)
		assert.ErrorIs(t, err, apperr.ErrInvalidState)
	}

	for _, st := range []AuctionStatus{StatusSold, StatusCompleted, StatusRejected} {
		decided := a.Clone()
		decided.Status = st
		before := *decided
		_, err := running.Decide(decided, bids, DecisionReject, uuid.Nil)
		assert.ErrorIs(t, err, ErrAuctionNotEnded, st)
		assert.Equal(t, before, *decided)
	}

	// an expired auction with bids under auto_sell resolves to sold, not ended
	expired := NewLifecycle(clock.NewFixed(a.EndTime), PolicyAutoSell)
	_, err := expired.Decide(a, bids, DecisionAccept, bids[0].ID)
	assert.ErrorIs(t, err, ErrAuctionNotEnded)
}

func TestDecideAutoSellEndedWithoutBids(t *testing.T) {
	a := newTestAuction(t, 50)
	l := NewLifecycle(clock.NewFixed(a.EndTime), PolicyAutoSell)

	_, err := l.Decide(a, nil, DecisionAccept, uuid.New())
	assert.ErrorIs(t, err, ErrBidNotFound)

	out, err := l.Decide(a, nil, DecisionReject, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, out.Auction.Status)
}

func TestParseDecision(t *testing.T) {
	d, err := ParseDecision(" Accept ")
	require.NoError(t, err)
	assert.Equal(t, DecisionAccept, d)

	_, err = ParseDecision("maybe")
	assert.ErrorIs(t, err, ErrInvalidDecision)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	a, bids, l := endedAuction(t)
	_, err = l.Decide(a, bids, Decision("maybe"), uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestParseClosePolicy(t *testing.T) {
	p, err := ParseClosePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyAutoSell, p)

	p, err = ParseClosePolicy("owner_decision")
	require.NoError(t, err)
	assert.Equal(t, PolicyOwnerDecision, p)

	_, err = ParseClosePolicy("auction_house")
	assert.Error(t, err)
}
