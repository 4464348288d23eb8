package application

import (
	"context"
	"fmt"

	"github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/google/uuid"
)

// AuctionSnapshot is a resolved auction together with its bids, oldest first.
type AuctionSnapshot struct {
	Auction *domain.Auction
	Bids    []*domain.Bid
}

// SnapshotReader gives read-only consumers such as dashboards resolved auctions without
// going through the DTO layer.
type SnapshotReader struct {
	resolver
}

func NewSnapshotReader(d Deps) *SnapshotReader {
	return &SnapshotReader{resolver{d: d.withDefaults()}}
}

func (r *SnapshotReader) Snapshot(ctx context.Context, auctionID uuid.UUID) (*AuctionSnapshot, error) {
	a, bids, err := r.current(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("auction snapshot: %w", err)
	}
	return &AuctionSnapshot{Auction: a, Bids: bids}, nil
}

// Snapshots resolves every stored auction matching f. Status in f filters on the stored value,
// callers wanting resolved statuses should leave it empty.
func (r *SnapshotReader) Snapshots(ctx context.Context, f domain.AuctionFilter) ([]*AuctionSnapshot, error) {
	stored, err := r.d.Auctions.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("auction snapshots: %w", err)
	}
	out := make([]*AuctionSnapshot, 0, len(stored))
	for _, a := range stored {
		id := a.ID
		var bids []*domain.Bid
		if r.isDue(a) {
			a, bids, err = r.current(ctx, id)
		} else {
			bids, err = r.d.Bids.ListByAuction(ctx, id)
		}
		if err != nil {
			return nil, fmt.Errorf("auction snapshots: auction %s: %w", id, err)
		}
		out = append(out, &AuctionSnapshot{Auction: a, Bids: bids})
	}
	return out, nil
}
