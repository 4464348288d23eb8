package application

import (
	"context"

	"github.com/google/uuid"
)

// AuctionService defines application interface layer of auction module
// exposes uses cases to external layer, aka infra
type AuctionService interface {
	// PlaceBid validates and stores a bid. A refused bid comes back as a result with a
	// rejection, errors are reserved for missing auctions and infrastructure failures.
	PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*PlaceBidResultDTO, error)
	WithdrawBid(ctx context.Context, bidID, bidderID uuid.UUID) error

	ResolveAuction(ctx context.Context, auctionID uuid.UUID) (*ResolveResultDTO, error)
	DecideAuctionResult(ctx context.Context, cmd DecideResultDTO) (*DecideResultOutDTO, error)

	GetAuctionView(ctx context.Context, auctionID uuid.UUID) (*AuctionViewDTO, error)
	GetAuctionBids(ctx context.Context, auctionID uuid.UUID) (*AuctionBidsDTO, error)
	ListAuctions(ctx context.Context, q ListAuctionsDTO) ([]*AuctionViewDTO, error)

	CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (*AuctionViewDTO, error)
	UpdateAuction(ctx context.Context, cmd UpdateAuctionDTO) (*AuctionViewDTO, error)
	DeleteAuction(ctx context.Context, auctionID, ownerID uuid.UUID) error
}

// concret implementation of AuctionService (struct)
type auctionService struct {
	placeBidUC    *PlaceBidUseCase
	withdrawBidUC *WithdrawBidUseCase
	resolveUC     *ResolveAuctionUseCase
	decideUC      *DecideAuctionResultUseCase
	getViewUC     *GetAuctionViewUseCase
	getBidsUC     *GetAuctionBidsUseCase
	listUC        *ListAuctionsUseCase
	createUC      *CreateAuctionUseCase
	updateUC      *UpdateAuctionUseCase
	deleteUC      *DeleteAuctionUseCase
}

// NewAuctionService builds every use case over the same collaborators.
func NewAuctionService(d Deps) AuctionService {
	d = d.withDefaults()
	return &auctionService{
		placeBidUC:    NewPlaceBidUseCase(d),
		withdrawBidUC: NewWithdrawBidUseCase(d),
		resolveUC:     NewResolveAuctionUseCase(d),
		decideUC:      NewDecideAuctionResultUseCase(d),
		getViewUC:     NewGetAuctionViewUseCase(d),
		getBidsUC:     NewGetAuctionBidsUseCase(d),
		listUC:        NewListAuctionsUseCase(d),
		createUC:      NewCreateAuctionUseCase(d),
		updateUC:      NewUpdateAuctionUseCase(d),
		deleteUC:      NewDeleteAuctionUseCase(d),
	}
}

func (s *auctionService) PlaceBid(ctx context.Context, cmd PlaceBidDTO) (*PlaceBidResultDTO, error) {
	return s.placeBidUC.Execute(ctx, cmd)
}

func (s *auctionService) WithdrawBid(ctx context.Context, bidID, bidderID uuid.UUID) error {
	return s.withdrawBidUC.Execute(ctx, bidID, bidderID)
}

func (s *auctionService) ResolveAuction(ctx context.Context, auctionID uuid.UUID) (*ResolveResultDTO, error) {
	return s.resolveUC.Execute(ctx, auctionID)
}

func (s *auctionService) DecideAuctionResult(ctx context.Context, cmd DecideResultDTO) (*DecideResultOutDTO, error) {
	return s.decideUC.Execute(ctx, cmd)
}

func (s *auctionService) GetAuctionView(ctx context.Context, auctionID uuid.UUID) (*AuctionViewDTO, error) {
	return s.getViewUC.Execute(ctx, auctionID)
}

func (s *auctionService) GetAuctionBids(ctx context.Context, auctionID uuid.UUID) (*AuctionBidsDTO, error) {
	return s.getBidsUC.Execute(ctx, auctionID)
}

func (s *auctionService) ListAuctions(ctx context.Context, q ListAuctionsDTO) ([]*AuctionViewDTO, error) {
	return s.listUC.Execute(ctx, q)
}

func (s *auctionService) CreateAuction(ctx context.Context, cmd CreateAuctionDTO) (*AuctionViewDTO, error) {
	return s.createUC.Execute(ctx, cmd)
}

func (s *auctionService) UpdateAuction(ctx context.Context, cmd UpdateAuctionDTO) (*AuctionViewDTO, error) {
	return s.updateUC.Execute(ctx, cmd)
}

func (s *auctionService) DeleteAuction(ctx context.Context, auctionID, ownerID uuid.UUID) error {
	return s.deleteUC.Execute(ctx, auctionID, ownerID)
}
