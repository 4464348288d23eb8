package domain

import (
	"fmt"
	"strings"

	"github.com/cristianortiz/harvestBid/internal/shared/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClosePolicy decides what an expired auction with bids turns into.
type ClosePolicy string

const (
	// PolicyAutoSell sells to the highest bidder on expiry, auctions without bids end.
	PolicyAutoSell ClosePolicy = "auto_sell"
	// PolicyOwnerDecision always ends on expiry and waits for the owner to accept a bid or reject.
	PolicyOwnerDecision ClosePolicy = "owner_decision"
)

func ParseClosePolicy(s string) (ClosePolicy, error) {
	switch p := ClosePolicy(strings.TrimSpace(s)); p {
	case PolicyAutoSell, PolicyOwnerDecision:
		return p, nil
	case "":
		return PolicyAutoSell, nil
	}
	return "", fmt.Errorf("unknown close policy %q", s)
}

// Lifecycle derives the effective status of an auction from the clock and its bids.
// It never touches storage, callers persist whatever it returns.
type Lifecycle struct {
	clock  clock.Clock
	policy ClosePolicy
}

func NewLifecycle(c clock.Clock, policy ClosePolicy) *Lifecycle {
	if policy == "" {
		policy = PolicyAutoSell
	}
	return &Lifecycle{clock: c, policy: policy}
}

func (l *Lifecycle) Policy() ClosePolicy { return l.policy }

func (l *Lifecycle) Clock() clock.Clock { return l.clock }

// Resolution is the outcome of Resolve. Auction is always a copy. Changed reports a status
// transition that must be persisted, WinningBid is set when the auction was just sold.
type Resolution struct {
	Auction    *Auction
	Changed    bool
	WinningBid *Bid
}

// Resolve closes an active auction whose end time has passed. Anything else comes back
// unchanged, so calling it again on the result is a no-op.
func (l *Lifecycle) Resolve(a *Auction, bids []*Bid) Resolution {
	next := a.Clone()
	if next.Status != StatusActive {
		return Resolution{Auction: next}
	}
	now := l.clock.Now()
	if now.Before(next.EndTime) {
		return Resolution{Auction: next}
	}

	highest := HighestBid(bids)
	if highest == nil || l.policy == PolicyOwnerDecision {
		// moveTo cannot fail here, active -> ended is always legal
		_ = next.moveTo(StatusEnded, nil, now)
		log.Debug("auction expired", zap.String("auctionID", next.ID.String()), zap.Int("bids", len(bids)))
		return Resolution{Auction: next, Changed: true}
	}

	_ = next.moveTo(StatusSold, highest, now)
	log.Debug("auction sold on expiry",
		zap.String("auctionID", next.ID.String()),
		zap.String("bidderID", highest.BidderID.String()),
		zap.Int64("amount", highest.Amount),
	)
	return Resolution{Auction: next, Changed: true, WinningBid: highest}
}

// Decision is the owner's verdict on an ended auction.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionAccept, DecisionReject:
		return d, nil
	}
	return "", ErrInvalidDecision
}

// DecideOutcome carries the decided auction copy and, on accept, the bid that won.
type DecideOutcome struct {
	Auction     *Auction
	AcceptedBid *Bid
}

// Decide applies the owner's decision. Only an auction whose resolved status is ended can be
// decided, the input is never mutated.
func (l *Lifecycle) Decide(a *Auction, bids []*Bid, action Decision, bidID uuid.UUID) (*DecideOutcome, error) {
	if action != DecisionAccept && action != DecisionReject {
		return nil, ErrInvalidDecision
	}
	next := l.Resolve(a, bids).Auction
	if next.Status != StatusEnded {
		return nil, fmt.Errorf("%w: status is %s", ErrAuctionNotEnded, next.Status)
	}

	now := l.clock.Now()
	out := &DecideOutcome{Auction: next}
	switch action {
	case DecisionAccept:
		bid := FindBid(bids, bidID)
		if bid == nil || bid.AuctionID != next.ID {
			return nil, ErrBidNotFound
		}
		if err := next.moveTo(StatusCompleted, bid, now); err != nil {
			return nil, err
		}
		out.AcceptedBid = bid
	case DecisionReject:
		if err := next.moveTo(StatusRejected, nil, now); err != nil {
			return nil, err
		}
	}
	next.DecidedAt = &now
	return out, nil
}
