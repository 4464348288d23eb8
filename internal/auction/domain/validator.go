package domain

import (
	"fmt"

	"github.com/cristianortiz/harvestBid/internal/shared/money"
	"github.com/google/uuid"
)

// RejectReason identifies why a bid was refused. Rejections are values, not errors.
type RejectReason string

const (
	ReasonInvalidAmount    RejectReason = "invalid_amount"
	ReasonAuctionNotActive RejectReason = "auction_not_active"
	ReasonAuctionEnded     RejectReason = "auction_ended"
	ReasonOwnAuction       RejectReason = "own_auction"
	ReasonBelowMinimum     RejectReason = "below_minimum"
)

// Rejection explains a refused bid. The quote fields are only filled for ReasonBelowMinimum.
type Rejection struct {
	Reason           RejectReason
	Message          string
	MinimumNextBid   int64
	MinimumIncrement int64
	CurrentHighest   int64
}

// Quote is the price a new bid has to beat.
type Quote struct {
	CurrentHighest   int64
	MinimumIncrement int64
	MinimumNextBid   int64
}

// MinimumIncrement is 5% of the current highest rounded down, never less than one unit.
func MinimumIncrement(currentHighest int64) int64 {
	if inc := currentHighest / 20; inc > 1 {
		return inc
	}
	return 1
}

// QuoteFor computes the quote from the auction floor and its existing bids.
func QuoteFor(a *Auction, bids []*Bid) Quote {
	current := a.MinimumBid
	if len(bids) > 0 {
		current = HighestAmount(bids)
	}
	inc := MinimumIncrement(current)
	return Quote{CurrentHighest: current, MinimumIncrement: inc, MinimumNextBid: current + inc}
}

// BidCheck is the validator verdict. Quote is always filled once the auction is known to be
// biddable.
type BidCheck struct {
	Accepted  bool
	Quote     Quote
	Rejection *Rejection
}

// BidValidator decides whether a prospective bid qualifies. It never persists anything.
type BidValidator struct {
	lifecycle *Lifecycle
}

func NewBidValidator(l *Lifecycle) *BidValidator {
	return &BidValidator{lifecycle: l}
}

// Validate runs the checks in order and stops at the first failure. A missing auction is the
// only error, every other refusal is a Rejection.
func (v *BidValidator) Validate(a *Auction, bids []*Bid, bidderID uuid.UUID, amount int64) (*BidCheck, error) {
	if check := CheckAmount(amount); check != nil {
		return check, nil
	}
	if a == nil {
		return nil, ErrAuctionNotFound
	}
	if a.Status != StatusActive {
		return rejected(ReasonAuctionNotActive, "auction not active"), nil
	}
	// stored status is active, so the resolved status differs only once the end time is reached
	if v.lifecycle.Resolve(a, bids).Changed {
		return rejected(ReasonAuctionEnded, "auction has ended"), nil
	}
	if a.IsOwnedBy(bidderID) {
		return rejected(ReasonOwnAuction, "cannot bid on own auction"), nil
	}

	q := QuoteFor(a, bids)
	if amount < q.MinimumNextBid {
		check := rejected(ReasonBelowMinimum, fmt.Sprintf("minimum bid is %s (%s above current highest)",
			money.Format(q.MinimumNextBid), money.Format(q.MinimumIncrement)))
		check.Quote = q
		check.Rejection.MinimumNextBid = q.MinimumNextBid
		check.Rejection.MinimumIncrement = q.MinimumIncrement
		check.Rejection.CurrentHighest = q.CurrentHighest
		return check, nil
	}
	return &BidCheck{Accepted: true, Quote: q}, nil
}

// CheckAmount is the first validation step, usable before the auction is loaded. It returns nil
// for a positive amount.
func CheckAmount(amount int64) *BidCheck {
	if amount <= 0 {
		return rejected(ReasonInvalidAmount, "invalid amount")
	}
	return nil
}

func rejected(reason RejectReason, msg string) *BidCheck {
	return &BidCheck{Rejection: &Rejection{Reason: reason, Message: msg}}
}
