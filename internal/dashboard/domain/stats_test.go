package domain

import (
	"testing"
	"time"

	auctiondomain "github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func auctionAt(t *testing.T, item, desc string, created time.Time, d time.Duration) *auctiondomain.Auction {
	t.Helper()
	a, err := auctiondomain.NewAuction(auctiondomain.NewAuctionParams{
		OwnerID:     uuid.New(),
		ItemName:    item,
		Description: desc,
		Quantity:    1,
		MinimumBid:  100,
		Duration:    d,
	}, created)
	require.NoError(t, err)
	return a
}

func TestStatusOfBid(t *testing.T) {
	a := auctionAt(t, "Wheat", "", base, time.Hour)
	first := auctiondomain.NewBid(uuid.New(), a.ID, uuid.New(), 150, base.Add(time.Minute))
	tie := auctiondomain.NewBid(uuid.New(), a.ID, uuid.New(), 150, base.Add(2*time.Minute))
	low := auctiondomain.NewBid(uuid.New(), a.ID, uuid.New(), 120, base.Add(3*time.Minute))
	bids := []*auctiondomain.Bid{first, tie, low}

	assert.Equal(t, BidWinning, StatusOfBid(first, a, bids))
	assert.Equal(t, BidOutbid, StatusOfBid(tie, a, bids))
	assert.Equal(t, BidOutbid, StatusOfBid(low, a, bids))

	closed := a.Clone()
	closed.Status = auctiondomain.StatusSold
	// equal amounts both count as won once the auction is over
	assert.Equal(t, BidWon, StatusOfBid(first, closed, bids))
	assert.Equal(t, BidWon, StatusOfBid(tie, closed, bids))
	assert.Equal(t, BidLost, StatusOfBid(low, closed, bids))
}

func TestRecommend(t *testing.T) {
	soon := auctionAt(t, "Wheat", "", base, 2*time.Hour)
	mango := auctionAt(t, "Alphonso", "sweet mango from Ratnagiri", base.Add(time.Minute), 48*time.Hour)
	late := auctionAt(t, "Onion", "", base.Add(2*time.Minute), 72*time.Hour)
	active := []*auctiondomain.Auction{late, soon, mango}

	got := Recommend(active, []string{" MANGO "}, 10)
	assert.Equal(t, []*auctiondomain.Auction{mango, soon, late}, got)

	got = Recommend(active, nil, 2)
	assert.Equal(t, []*auctiondomain.Auction{late, mango}, got)

	assert.Nil(t, Recommend(active, nil, 0))
	assert.Equal(t, []*auctiondomain.Auction{late, soon, mango}, active, "input order untouched")
}
