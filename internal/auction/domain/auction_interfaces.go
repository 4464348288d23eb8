package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuctionFilter narrows List. Zero values mean no restriction.
type AuctionFilter struct {
	Status  AuctionStatus
	OwnerID uuid.UUID
}

type AuctionRepository interface {
	Create(ctx context.Context, a *Auction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Auction, error)
	List(ctx context.Context, f AuctionFilter) ([]*Auction, error)
	// ListActiveEndingBefore returns stored-active auctions whose end time is not after t.
	ListActiveEndingBefore(ctx context.Context, t time.Time) ([]*Auction, error)
	// Update writes a only while the stored status still equals expected, ErrStaleAuction otherwise.
	Update(ctx context.Context, a *Auction, expected AuctionStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type BidRepository interface {
	// Insert stores b only while the highest stored amount on its auction still equals
	// expectedHighest (0 when there were no bids) and the auction is still active, ErrStaleBid
	// otherwise.
	Insert(ctx context.Context, b *Bid, expectedHighest int64) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bid, error)
	// ListByAuction returns bids oldest first.
	ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error)
	// ListByBidder returns bids newest first.
	ListByBidder(ctx context.Context, bidderID uuid.UUID) ([]*Bid, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
