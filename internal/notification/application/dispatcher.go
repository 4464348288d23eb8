package application

import (
	"context"
	"fmt"

	auctiondomain "github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/cristianortiz/harvestBid/internal/notification/domain"
	"github.com/cristianortiz/harvestBid/internal/shared/clock"
	"github.com/cristianortiz/harvestBid/internal/shared/logger"
	"github.com/cristianortiz/harvestBid/internal/shared/metrics"
	"github.com/cristianortiz/harvestBid/internal/shared/money"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Dispatcher writes the notification records produced by auction events. Delivery to phones
// or mail happens elsewhere, this only fills the inbox.
//
// Fan-out is best effort: every recipient is attempted, records already written stay written
// and the failures come back joined in one error.
type Dispatcher struct {
	repo    domain.NotificationRepository
	clock   clock.Clock
	metrics *metrics.AuctionMetrics
}

func NewDispatcher(repo domain.NotificationRepository, c clock.Clock, m *metrics.AuctionMetrics) *Dispatcher {
	return &Dispatcher{repo: repo, clock: c, metrics: m}
}

// BidPlaced tells the owner about the new bid and warns every earlier bidder, once each,
// that they were outbid. The new bidder is never warned about their own bid.
func (d *Dispatcher) BidPlaced(ctx context.Context, a *auctiondomain.Auction, newBid *auctiondomain.Bid, prior []*auctiondomain.Bid) error {
	amount := money.Format(newBid.Amount)
	errs := d.send(ctx, a.ID, a.OwnerID, domain.RecipientFarmer, domain.KindInfo,
		"New bid received",
		fmt.Sprintf("A bid of %s was placed on your %s auction.", amount, a.ItemName))

	for _, bidder := range auctiondomain.DistinctBidders(prior, newBid.BidderID) {
		errs = multierr.Append(errs, d.send(ctx, a.ID, bidder, domain.RecipientBuyer, domain.KindWarning,
			"You have been outbid",
			fmt.Sprintf("Someone bid %s on the %s auction.", amount, a.ItemName)))
	}
	return errs
}

// AuctionSold congratulates the winner and tells the owner the sale price.
func (d *Dispatcher) AuctionSold(ctx context.Context, a *auctiondomain.Auction, winning *auctiondomain.Bid) error {
	amount := money.Format(winning.Amount)
	return multierr.Combine(
		d.send(ctx, a.ID, winning.BidderID, domain.RecipientBuyer, domain.KindSuccess,
			"Auction won",
			fmt.Sprintf("Congratulations! You won the %s auction with %s.", a.ItemName, amount)),
		d.send(ctx, a.ID, a.OwnerID, domain.RecipientFarmer, domain.KindSuccess,
			"Auction sold",
			fmt.Sprintf("Your %s auction sold for %s.", a.ItemName, amount)),
	)
}

// AuctionDecided informs the accepted bidder. A rejection notifies nobody: the owner made
// the call and bidders were never promised the lot.
func (d *Dispatcher) AuctionDecided(ctx context.Context, a *auctiondomain.Auction, decision auctiondomain.Decision, accepted *auctiondomain.Bid) error {
	if decision != auctiondomain.DecisionAccept || accepted == nil {
		return nil
	}
	return d.send(ctx, a.ID, accepted.BidderID, domain.RecipientBuyer, domain.KindSuccess,
		"Bid accepted",
		fmt.Sprintf("Your bid of %s for %s was accepted by the seller.", money.Format(accepted.Amount), a.ItemName))
}

func (d *Dispatcher) send(ctx context.Context, auctionID, recipient uuid.UUID, role domain.RecipientRole, kind domain.Kind, title, message string) error {
	n := domain.NewNotification(recipient, role, kind, title, message, auctionID, d.clock.Now())
	if err := d.repo.Create(ctx, n); err != nil {
		d.metrics.NotificationFailed()
		log.Error("notification not stored",
			zap.String("recipientID", recipient.String()),
			zap.String("auctionID", auctionID.String()),
			zap.String("title", title),
			zap.Error(err),
		)
		return fmt.Errorf("notify %s: %w", recipient, err)
	}
	d.metrics.NotificationCreated(string(kind))
	return nil
}
