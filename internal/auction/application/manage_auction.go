package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristianortiz/harvestBid/internal/auction/domain"
	userdomain "github.com/cristianortiz/harvestBid/internal/user/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateAuctionDTO struct {
	OwnerID       uuid.UUID `json:"-"`
	ItemName      string    `json:"item_name" validate:"required"`
	Quantity      int       `json:"quantity" validate:"required,gt=0"`
	Unit          string    `json:"unit"`
	MinimumBid    int64     `json:"minimum_bid" validate:"required,gt=0"`
	Description   string    `json:"description"`
	State         string    `json:"state"`
	District      string    `json:"district"`
	DurationHours int       `json:"duration_hours" validate:"required,gt=0,lte=720"`
}

// CreateAuctionUseCase lists a new lot for a registered farmer.
type CreateAuctionUseCase struct {
	d Deps
}

func NewCreateAuctionUseCase(d Deps) *CreateAuctionUseCase {
	return &CreateAuctionUseCase{d: d.withDefaults()}
}

func (uc *CreateAuctionUseCase) Execute(ctx context.Context, cmd CreateAuctionDTO) (*AuctionViewDTO, error) {
	owner, err := uc.d.Users.GetByID(ctx, cmd.OwnerID)
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			return nil, fmt.Errorf("create auction use case: %w", userdomain.ErrNotFarmer)
		}
		return nil, fmt.Errorf("create auction use case: load owner: %w", err)
	}
	if !owner.IsFarmer() {
		return nil, fmt.Errorf("create auction use case: %w", userdomain.ErrNotFarmer)
	}

	state, district := cmd.State, cmd.District
	if state == "" {
		state = owner.State
	}
	if district == "" {
		district = owner.District
	}
	a, err := domain.NewAuction(domain.NewAuctionParams{
		OwnerID:     owner.ID,
		ItemName:    cmd.ItemName,
		Quantity:    cmd.Quantity,
		Unit:        cmd.Unit,
		MinimumBid:  cmd.MinimumBid,
		Description: cmd.Description,
		State:       state,
		District:    district,
		Duration:    time.Duration(cmd.DurationHours) * time.Hour,
	}, uc.d.Lifecycle.Clock().Now())
	if err != nil {
		return nil, fmt.Errorf("create auction use case: %w", err)
	}
	if err := uc.d.Auctions.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create auction use case: save: %w", err)
	}
	log.Info("auction created",
		zap.String("auctionID", a.ID.String()),
		zap.String("ownerID", a.OwnerID.String()),
		zap.Int64("minimumBid", a.MinimumBid),
	)
	return BuildView(a, nil), nil
}

type UpdateAuctionDTO struct {
	AuctionID     uuid.UUID `json:"-"`
	OwnerID       uuid.UUID `json:"-"`
	ItemName      *string   `json:"item_name"`
	Quantity      *int      `json:"quantity" validate:"omitempty,gt=0"`
	Unit          *string   `json:"unit"`
	MinimumBid    *int64    `json:"minimum_bid" validate:"omitempty,gt=0"`
	Description   *string   `json:"description"`
	State         *string   `json:"state"`
	District      *string   `json:"district"`
	DurationHours *int      `json:"duration_hours" validate:"omitempty,gt=0,lte=720"`
}

// editable loads an auction the caller may still change: owned by them, running and bid free.
func (r *resolver) editable(ctx context.Context, auctionID, ownerID uuid.UUID) (*domain.Auction, error) {
	a, bids, err := r.load(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if !a.IsOwnedBy(ownerID) {
		return nil, domain.ErrNotAuctionOwner
	}
	if len(bids) > 0 {
		return nil, domain.ErrAuctionHasBids
	}
	return a, nil
}

// UpdateAuctionUseCase edits a running auction that has not received bids yet.
type UpdateAuctionUseCase struct {
	resolver
}

func NewUpdateAuctionUseCase(d Deps) *UpdateAuctionUseCase {
	return &UpdateAuctionUseCase{resolver{d: d.withDefaults()}}
}

func (uc *UpdateAuctionUseCase) Execute(ctx context.Context, cmd UpdateAuctionDTO) (*AuctionViewDTO, error) {
	var view *AuctionViewDTO
	err := uc.withLock(ctx, cmd.AuctionID, func() error {
		a, err := uc.editable(ctx, cmd.AuctionID, cmd.OwnerID)
		if err != nil {
			return err
		}
		resolved, err := uc.resolveLocked(ctx, a, nil)
		if err != nil {
			return err
		}
		if resolved.auction.Status != domain.StatusActive {
			return domain.ErrAuctionNotActive
		}

		changes := domain.AuctionChanges{
			ItemName:    cmd.ItemName,
			Quantity:    cmd.Quantity,
			Unit:        cmd.Unit,
			MinimumBid:  cmd.MinimumBid,
			Description: cmd.Description,
			State:       cmd.State,
			District:    cmd.District,
		}
		if cmd.DurationHours != nil {
			d := time.Duration(*cmd.DurationHours) * time.Hour
			changes.Duration = &d
		}
		next, err := a.Apply(changes, uc.d.Lifecycle.Clock().Now())
		if err != nil {
			return err
		}
		if err := uc.d.Auctions.Update(ctx, next, a.Status); err != nil {
			return err
		}
		view = BuildView(next, nil)
		uc.d.Broadcaster.AuctionUpdated(view)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update auction use case: auction %s: %w", cmd.AuctionID, err)
	}
	return view, nil
}

// DeleteAuctionUseCase removes an auction nobody has bid on.
type DeleteAuctionUseCase struct {
	resolver
}

func NewDeleteAuctionUseCase(d Deps) *DeleteAuctionUseCase {
	return &DeleteAuctionUseCase{resolver{d: d.withDefaults()}}
}

func (uc *DeleteAuctionUseCase) Execute(ctx context.Context, auctionID, ownerID uuid.UUID) error {
	err := uc.withLock(ctx, auctionID, func() error {
		if _, err := uc.editable(ctx, auctionID, ownerID); err != nil {
			return err
		}
		return uc.d.Auctions.Delete(ctx, auctionID)
	})
	if err != nil {
		return fmt.Errorf("delete auction use case: auction %s: %w", auctionID, err)
	}
	log.Info("auction deleted", zap.String("auctionID", auctionID.String()))
	return nil
}
