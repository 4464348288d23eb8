package application

import (
	"context"
	"fmt"

	"github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DecideResultDTO struct {
	AuctionID uuid.UUID `json:"-"`
	OwnerID   uuid.UUID `json:"-"`
	Action    string    `json:"action" validate:"required,oneof=accept reject"`
	BidID     uuid.UUID `json:"bid_id"`
}

type DecideResultOutDTO struct {
	View        *AuctionViewDTO `json:"view"`
	AcceptedBid *BidDTO         `json:"accepted_bid,omitempty"`
	DispatchErr error           `json:"-"`
}

// DecideAuctionResultUseCase lets the owner accept a bid on, or reject, an ended auction.
type DecideAuctionResultUseCase struct {
	resolver
}

func NewDecideAuctionResultUseCase(d Deps) *DecideAuctionResultUseCase {
	return &DecideAuctionResultUseCase{resolver{d: d.withDefaults()}}
}

func (uc *DecideAuctionResultUseCase) Execute(ctx context.Context, cmd DecideResultDTO) (*DecideResultOutDTO, error) {
	action, err := domain.ParseDecision(cmd.Action)
	if err != nil {
		return nil, fmt.Errorf("decide result use case: %w", err)
	}

	var out *DecideResultOutDTO
	err = uc.withLock(ctx, cmd.AuctionID, func() error {
		a, bids, err := uc.load(ctx, cmd.AuctionID)
		if err != nil {
			return err
		}
		if !a.IsOwnedBy(cmd.OwnerID) {
			return domain.ErrNotAuctionOwner
		}
		resolved, err := uc.resolveLocked(ctx, a, bids)
		if err != nil {
			return err
		}
		a = resolved.auction

		decided, err := uc.d.Lifecycle.Decide(a, bids, action, cmd.BidID)
		if err != nil {
			return err
		}
		if err := uc.d.Auctions.Update(ctx, decided.Auction, a.Status); err != nil {
			return err
		}
		uc.d.Metrics.Transition(string(decided.Auction.Status))
		log.Info("auction decided",
			zap.String("auctionID", a.ID.String()),
			zap.String("action", string(action)),
			zap.String("status", string(decided.Auction.Status)),
		)

		dispatchErr := uc.d.Notifier.AuctionDecided(ctx, decided.Auction, action, decided.AcceptedBid)
		logDispatch("auction decided", a.ID, dispatchErr)

		view := BuildView(decided.Auction, bids)
		uc.d.Broadcaster.AuctionUpdated(view)

		out = &DecideResultOutDTO{View: view, DispatchErr: dispatchErr}
		if decided.AcceptedBid != nil {
			out.AcceptedBid = ToBidDTO(decided.AcceptedBid)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("decide result use case: auction %s: %w", cmd.AuctionID, err)
	}
	return out, nil
}
