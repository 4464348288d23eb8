package application

import (
	"context"
	"fmt"

	"github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WithdrawBidUseCase lets a bidder take back a bid that is no longer leading while the
// auction still runs.
type WithdrawBidUseCase struct {
	resolver
}

func NewWithdrawBidUseCase(d Deps) *WithdrawBidUseCase {
	return &WithdrawBidUseCase{resolver{d: d.withDefaults()}}
}

func (uc *WithdrawBidUseCase) Execute(ctx context.Context, bidID, bidderID uuid.UUID) error {
	bid, err := uc.d.Bids.GetByID(ctx, bidID)
	if err != nil {
		return fmt.Errorf("withdraw bid use case: %w", err)
	}
	if bid.BidderID != bidderID {
		return fmt.Errorf("withdraw bid use case: %w", domain.ErrNotBidOwner)
	}

	err = uc.withLock(ctx, bid.AuctionID, func() error {
		a, bids, err := uc.load(ctx, bid.AuctionID)
		if err != nil {
			return err
		}
		resolved, err := uc.resolveLocked(ctx, a, bids)
		if err != nil {
			return err
		}
		if resolved.auction.Status != domain.StatusActive {
			return domain.ErrAuctionNotActive
		}
		if best := domain.HighestBid(bids); best != nil && best.ID == bid.ID {
			return domain.ErrHighestBidWithdrawal
		}
		if domain.FindBid(bids, bid.ID) == nil {
			return domain.ErrBidNotFound
		}
		if err := uc.d.Bids.Delete(ctx, bid.ID); err != nil {
			return err
		}
		remaining := make([]*domain.Bid, 0, len(bids)-1)
		for _, b := range bids {
			if b.ID != bid.ID {
				remaining = append(remaining, b)
			}
		}
		uc.d.Broadcaster.AuctionUpdated(BuildView(resolved.auction, remaining))
		return nil
	})
	if err != nil {
		return fmt.Errorf("withdraw bid use case: bid %s: %w", bidID, err)
	}
	log.Info("bid withdrawn", zap.String("bidID", bidID.String()), zap.String("auctionID", bid.AuctionID.String()))
	return nil
}
