package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// resolver holds the lazy close path shared by every use case that reads or writes an auction.
type resolver struct {
	d Deps
}

// withLock runs fn while holding the per-auction write lock.
func (r *resolver) withLock(ctx context.Context, auctionID uuid.UUID, fn func() error) error {
	unlock, err := r.d.Locker.Lock(ctx, lockKey(auctionID))
	if err != nil {
		log.Warn("could not acquire auction lock", zap.String("auctionID", auctionID.String()), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrAuctionBusy, err)
	}
	defer unlock()
	return fn()
}

func (r *resolver) load(ctx context.Context, auctionID uuid.UUID) (*domain.Auction, []*domain.Bid, error) {
	a, err := r.d.Auctions.GetByID(ctx, auctionID)
	if err != nil {
		return nil, nil, err
	}
	bids, err := r.d.Bids.ListByAuction(ctx, auctionID)
	if err != nil {
		return nil, nil, fmt.Errorf("list bids of auction %s: %w", auctionID, err)
	}
	return a, bids, nil
}

// isDue reports whether resolving a would change it.
func (r *resolver) isDue(a *domain.Auction) bool {
	return a.Status == domain.StatusActive && !r.d.Lifecycle.Clock().Now().Before(a.EndTime)
}

type resolveOutcome struct {
	auction     *domain.Auction
	changed     bool
	dispatchErr error
}

// resolveLocked resolves a, persists a transition and emits its events. The caller must hold
// the auction lock and pass the bids it read under that lock.
func (r *resolver) resolveLocked(ctx context.Context, a *domain.Auction, bids []*domain.Bid) (*resolveOutcome, error) {
	res := r.d.Lifecycle.Resolve(a, bids)
	if !res.Changed {
		return &resolveOutcome{auction: res.Auction}, nil
	}

	if err := r.d.Auctions.Update(ctx, res.Auction, a.Status); err != nil {
		if !errors.Is(err, domain.ErrStaleAuction) {
			return nil, fmt.Errorf("persist resolved auction %s: %w", a.ID, err)
		}
		// someone else already moved it, their write emitted the events
		log.Warn("auction changed while resolving, keeping stored state", zap.String("auctionID", a.ID.String()))
		fresh, gerr := r.d.Auctions.GetByID(ctx, a.ID)
		if gerr != nil {
			return nil, gerr
		}
		return &resolveOutcome{auction: fresh}, nil
	}

	log.Info("auction closed",
		zap.String("auctionID", a.ID.String()),
		zap.String("status", string(res.Auction.Status)),
		zap.Int("bids", len(bids)),
	)
	r.d.Metrics.Transition(string(res.Auction.Status))

	out := &resolveOutcome{auction: res.Auction, changed: true}
	if res.WinningBid != nil {
		out.dispatchErr = r.d.Notifier.AuctionSold(ctx, res.Auction, res.WinningBid)
		logDispatch("auction sold", a.ID, out.dispatchErr)
	}
	r.d.Broadcaster.AuctionUpdated(BuildView(res.Auction, bids))
	return out, nil
}

// current loads an auction with its bids, closing it first when its end time has passed.
// Reads of auctions that are not due never take the lock.
func (r *resolver) current(ctx context.Context, auctionID uuid.UUID) (*domain.Auction, []*domain.Bid, error) {
	a, bids, err := r.load(ctx, auctionID)
	if err != nil {
		return nil, nil, err
	}
	if !r.isDue(a) {
		return a, bids, nil
	}
	err = r.withLock(ctx, auctionID, func() error {
		// reload, the state may have moved while waiting for the lock
		a, bids, err = r.load(ctx, auctionID)
		if err != nil {
			return err
		}
		out, rerr := r.resolveLocked(ctx, a, bids)
		if rerr != nil {
			return rerr
		}
		a = out.auction
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return a, bids, nil
}

func logDispatch(event string, auctionID uuid.UUID, err error) {
	if err == nil {
		return
	}
	log.Error("notification fan-out incomplete",
		zap.String("event", event),
		zap.String("auctionID", auctionID.String()),
		zap.Error(err),
	)
}

// ResolveResultDTO reports a resolve call. DispatchErr carries notification failures that
// did not undo the transition.
type ResolveResultDTO struct {
	View        *AuctionViewDTO `json:"view"`
	Changed     bool            `json:"changed"`
	DispatchErr error           `json:"-"`
}

// ResolveAuctionUseCase closes an auction whose end time has passed. Calling it again is a no-op.
type ResolveAuctionUseCase struct {
	resolver
}

func NewResolveAuctionUseCase(d Deps) *ResolveAuctionUseCase {
	return &ResolveAuctionUseCase{resolver{d: d.withDefaults()}}
}

func (uc *ResolveAuctionUseCase) Execute(ctx context.Context, auctionID uuid.UUID) (*ResolveResultDTO, error) {
	var result *ResolveResultDTO
	err := uc.withLock(ctx, auctionID, func() error {
		a, bids, err := uc.load(ctx, auctionID)
		if err != nil {
			return err
		}
		out, err := uc.resolveLocked(ctx, a, bids)
		if err != nil {
			return err
		}
		result = &ResolveResultDTO{View: BuildView(out.auction, bids), Changed: out.changed, DispatchErr: out.dispatchErr}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolve auction use case: %w", err)
	}
	return result, nil
}
