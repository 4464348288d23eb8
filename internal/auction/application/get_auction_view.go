package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/google/uuid"
)

// GetAuctionViewUseCase retrieves the current state of an auction, closing it first when due
type GetAuctionViewUseCase struct {
	resolver
}

func NewGetAuctionViewUseCase(d Deps) *GetAuctionViewUseCase {
	return &GetAuctionViewUseCase{resolver{d: d.withDefaults()}}
}

func (uc *GetAuctionViewUseCase) Execute(ctx context.Context, auctionID uuid.UUID) (*AuctionViewDTO, error) {
	a, bids, err := uc.current(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("get auction view use case: %w", err)
	}
	return BuildView(a, bids), nil
}

type AuctionBidsDTO struct {
	AuctionID      uuid.UUID `json:"auction_id"`
	CurrentHighest int64     `json:"current_highest"`
	Bids           []*BidDTO `json:"bids"`
}

// GetAuctionBidsUseCase lists the bids of one auction, highest first.
type GetAuctionBidsUseCase struct {
	resolver
}

func NewGetAuctionBidsUseCase(d Deps) *GetAuctionBidsUseCase {
	return &GetAuctionBidsUseCase{resolver{d: d.withDefaults()}}
}

func (uc *GetAuctionBidsUseCase) Execute(ctx context.Context, auctionID uuid.UUID) (*AuctionBidsDTO, error) {
	a, bids, err := uc.current(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("get auction bids use case: %w", err)
	}

	ranked := make([]*domain.Bid, len(bids))
	copy(ranked, bids)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Amount != ranked[j].Amount {
			return ranked[i].Amount > ranked[j].Amount
		}
		return ranked[i].Timestamp.Before(ranked[j].Timestamp)
	})

	out := &AuctionBidsDTO{
		AuctionID:      a.ID,
		CurrentHighest: domain.QuoteFor(a, bids).CurrentHighest,
		Bids:           make([]*BidDTO, 0, len(ranked)),
	}
	for _, b := range ranked {
		out.Bids = append(out.Bids, ToBidDTO(b))
	}
	return out, nil
}
