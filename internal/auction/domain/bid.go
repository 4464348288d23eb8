package domain

import (
	"time"

	"github.com/google/uuid"
)

// bid represents individual bid in an auction
// is also an entity inside the Auction agreggate (DDD concepts)
type Bid struct {
	ID        uuid.UUID
	AuctionID uuid.UUID
	BidderID  uuid.UUID // user who makes the bid
	Amount    int64
	Timestamp time.Time
}

// NewBid creates a new Bid instance
func NewBid(id, auctionID, bidderID uuid.UUID, amount int64, timestamp time.Time) *Bid {
	return &Bid{
		ID:        id,
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		Timestamp: timestamp,
	}
}

// outranks orders bids by amount, equal amounts go to the earliest timestamp and, as a last
// resort, the smaller id so the result never depends on slice order.
func (b *Bid) outranks(other *Bid) bool {
	if b.Amount != other.Amount {
		return b.Amount > other.Amount
	}
	if !b.Timestamp.Equal(other.Timestamp) {
		return b.Timestamp.Before(other.Timestamp)
	}
	return b.ID.String() < other.ID.String()
}

// HighestBid returns the winning bid of the set, nil when empty.
func HighestBid(bids []*Bid) *Bid {
	var best *Bid
	for _, b := range bids {
		if best == nil || b.outranks(best) {
			best = b
		}
	}
	return best
}

// HighestAmount is the greatest amount in bids, 0 when empty.
func HighestAmount(bids []*Bid) int64 {
	if best := HighestBid(bids); best != nil {
		return best.Amount
	}
	return 0
}

// DistinctBidders lists each bidder once in order of first bid, skipping exclude.
func DistinctBidders(bids []*Bid, exclude uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(bids))
	var out []uuid.UUID
	for _, b := range bids {
		if b.BidderID == exclude {
			continue
		}
		if _, ok := seen[b.BidderID]; ok {
			continue
		}
		seen[b.BidderID] = struct{}{}
		out = append(out, b.BidderID)
	}
	return out
}

// FindBid looks a bid up by id.
func FindBid(bids []*Bid, id uuid.UUID) *Bid {
	for _, b := range bids {
		if b.ID == id {
			return b
		}
	}
	return nil
}
