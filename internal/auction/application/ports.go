package application

import (
	"context"

	"github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/cristianortiz/harvestBid/internal/shared/lock"
	"github.com/cristianortiz/harvestBid/internal/shared/logger"
	"github.com/cristianortiz/harvestBid/internal/shared/metrics"
	userdomain "github.com/cristianortiz/harvestBid/internal/user/domain"
	"github.com/google/uuid"
)

var log = logger.GetLogger()

// Notifier turns auction events into notification records. Errors are reported to the caller
// of the use case and never undo the write that triggered them.
type Notifier interface {
	// BidPlaced receives the bids that existed before newBid was stored.
	BidPlaced(ctx context.Context, a *domain.Auction, newBid *domain.Bid, prior []*domain.Bid) error
	AuctionSold(ctx context.Context, a *domain.Auction, winning *domain.Bid) error
	AuctionDecided(ctx context.Context, a *domain.Auction, decision domain.Decision, accepted *domain.Bid) error
}

// Broadcaster pushes fresh auction views to live subscribers. It must not block.
type Broadcaster interface {
	AuctionUpdated(view *AuctionViewDTO)
}

// UserReader is the slice of the user context the auction module needs.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userdomain.User, error)
}

// Deps groups the collaborators shared by every auction use case.
type Deps struct {
	Auctions    domain.AuctionRepository
	Bids        domain.BidRepository
	Users       UserReader
	Lifecycle   *domain.Lifecycle
	Validator   *domain.BidValidator
	Locker      lock.Locker
	Notifier    Notifier
	Broadcaster Broadcaster
	Metrics     *metrics.AuctionMetrics
}

func lockKey(auctionID uuid.UUID) string {
	return "auction:" + auctionID.String()
}

type noopNotifier struct{}

func (noopNotifier) BidPlaced(context.Context, *domain.Auction, *domain.Bid, []*domain.Bid) error {
	return nil
}
func (noopNotifier) AuctionSold(context.Context, *domain.Auction, *domain.Bid) error { return nil }
func (noopNotifier) AuctionDecided(context.Context, *domain.Auction, domain.Decision, *domain.Bid) error {
	return nil
}

type noopBroadcaster struct{}

func (noopBroadcaster) AuctionUpdated(*AuctionViewDTO) {}

// withDefaults fills optional collaborators so use cases never nil-check them.
func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = noopNotifier{}
	}
	if d.Broadcaster == nil {
		d.Broadcaster = noopBroadcaster{}
	}
	if d.Locker == nil {
		d.Locker = lock.NewMemoryLocker()
	}
	return d
}
