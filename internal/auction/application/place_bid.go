package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBidAttempts bounds the validate-and-retry loop when the highest bid moves under us.
const maxBidAttempts = 3

// PlaceBidDTO is DTO input for PlaceBid useCase
type PlaceBidDTO struct {
	AuctionID uuid.UUID `json:"auction_id" validate:"required"`
	BidderID  uuid.UUID `json:"-"`
	Amount    int64     `json:"amount"`
}

// PlaceBidResultDTO is either an accepted bid or a rejection, never both. A rejected bid is a
// normal outcome, not an error.
type PlaceBidResultDTO struct {
	Accepted       bool            `json:"accepted"`
	Bid            *BidDTO         `json:"bid,omitempty"`
	Rejection      *RejectionDTO   `json:"rejection,omitempty"`
	CurrentHighest int64           `json:"current_highest"`
	MinimumNextBid int64           `json:"minimum_next_bid"`
	View           *AuctionViewDTO `json:"view,omitempty"`
	DispatchErr    error           `json:"-"`
}

// PlaceBidUseCase validates and stores a bid, then fans out notifications and a live update.
type PlaceBidUseCase struct {
	resolver
}

func NewPlaceBidUseCase(d Deps) *PlaceBidUseCase {
	return &PlaceBidUseCase{resolver{d: d.withDefaults()}}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, cmd PlaceBidDTO) (*PlaceBidResultDTO, error) {
	log.Info("Executing PlaceBidUseCase",
		zap.String("auctionID", cmd.AuctionID.String()),
		zap.String("bidderID", cmd.BidderID.String()),
		zap.Int64("amount", cmd.Amount),
	)
	if check := domain.CheckAmount(cmd.Amount); check != nil {
		return uc.rejected(cmd, check), nil
	}

	var result *PlaceBidResultDTO
	err := uc.withLock(ctx, cmd.AuctionID, func() error {
		for attempt := 1; attempt <= maxBidAttempts; attempt++ {
			res, err := uc.attempt(ctx, cmd)
			if errors.Is(err, domain.ErrStaleBid) {
				log.Warn("PlaceBidUseCase: highest bid moved, retrying",
					zap.String("auctionID", cmd.AuctionID.String()),
					zap.Int("attempt", attempt),
				)
				continue
			}
			if err != nil {
				return err
			}
			result = res
			return nil
		}
		return domain.ErrStaleBid
	})
	if err != nil {
		if !errors.Is(err, domain.ErrAuctionNotFound) {
			log.Error("PlaceBidUseCase: failed", zap.String("auctionID", cmd.AuctionID.String()), zap.Error(err))
		}
		return nil, fmt.Errorf("place bid use case: auction %s: %w", cmd.AuctionID, err)
	}
	return result, nil
}

// attempt runs one read-validate-write round. ErrStaleBid means the round lost a race and can
// be retried from a fresh read.
func (uc *PlaceBidUseCase) attempt(ctx context.Context, cmd PlaceBidDTO) (*PlaceBidResultDTO, error) {
	a, bids, err := uc.load(ctx, cmd.AuctionID)
	if err != nil {
		return nil, err
	}

	check, err := uc.d.Validator.Validate(a, bids, cmd.BidderID, cmd.Amount)
	if err != nil {
		return nil, err
	}
	if !check.Accepted {
		if check.Rejection.Reason == domain.ReasonAuctionEnded {
			// the bid arrived after the close, take the chance to persist it
			if _, rerr := uc.resolveLocked(ctx, a, bids); rerr != nil {
				log.Warn("PlaceBidUseCase: closing expired auction failed", zap.String("auctionID", a.ID.String()), zap.Error(rerr))
			}
		}
		return uc.rejected(cmd, check), nil
	}

	bid := domain.NewBid(uuid.New(), a.ID, cmd.BidderID, cmd.Amount, uc.d.Lifecycle.Clock().Now())
	if err := uc.d.Bids.Insert(ctx, bid, domain.HighestAmount(bids)); err != nil {
		return nil, err
	}
	uc.d.Metrics.BidAccepted()
	log.Info("PlaceBidUseCase: bid accepted",
		zap.String("auctionID", a.ID.String()),
		zap.String("bidID", bid.ID.String()),
		zap.Int64("amount", bid.Amount),
	)

	dispatchErr := uc.d.Notifier.BidPlaced(ctx, a, bid, bids)
	logDispatch("bid placed", a.ID, dispatchErr)

	view := BuildView(a, append(bids, bid))
	uc.d.Broadcaster.AuctionUpdated(view)

	return &PlaceBidResultDTO{
		Accepted:       true,
		Bid:            ToBidDTO(bid),
		CurrentHighest: view.CurrentHighestBid,
		MinimumNextBid: view.MinimumNextBid,
		View:           view,
		DispatchErr:    dispatchErr,
	}, nil
}

func (uc *PlaceBidUseCase) rejected(cmd PlaceBidDTO, check *domain.BidCheck) *PlaceBidResultDTO {
	uc.d.Metrics.BidRejected(string(check.Rejection.Reason))
	log.Warn("PlaceBidUseCase: bid rejected",
		zap.String("auctionID", cmd.AuctionID.String()),
		zap.String("bidderID", cmd.BidderID.String()),
		zap.Int64("amount", cmd.Amount),
		zap.String("reason", string(check.Rejection.Reason)),
	)
	return &PlaceBidResultDTO{
		Rejection:      toRejectionDTO(check.Rejection),
		CurrentHighest: check.Quote.CurrentHighest,
		MinimumNextBid: check.Quote.MinimumNextBid,
	}
}
