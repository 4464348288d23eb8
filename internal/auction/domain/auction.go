package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/cristianortiz/harvestBid/internal/shared/logger"
	"github.com/google/uuid"
)

var log = logger.GetLogger()

// AuctionStatus represents the stored state of an auction
type AuctionStatus string

const (
	StatusActive    AuctionStatus = "active"
	StatusEnded     AuctionStatus = "ended" // expired, waiting for the owner to accept or reject
	StatusSold      AuctionStatus = "sold"
	StatusCompleted AuctionStatus = "completed"
	StatusRejected  AuctionStatus = "rejected"
)

// transitions is the only source of legal status moves. Anything not listed is refused,
// so statuses never move backwards.
var transitions = map[AuctionStatus][]AuctionStatus{
	StatusActive: {StatusEnded, StatusSold},
	StatusEnded:  {StatusCompleted, StatusRejected},
}

func ParseStatus(s string) (AuctionStatus, error) {
	st := AuctionStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusActive, StatusEnded, StatusSold, StatusCompleted, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidAuction, s)
}

// CanTransitionTo reports whether next is a legal move from s.
func (s AuctionStatus) CanTransitionTo(next AuctionStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal is true for statuses with no outgoing transition.
func (s AuctionStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// HasWinner is true for statuses that carry winningBid and winningBidderId.
func (s AuctionStatus) HasWinner() bool {
	return s == StatusSold || s == StatusCompleted
}

const defaultUnit = "kg"

type Auction struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID
	ItemName        string
	Quantity        int
	Unit            string
	MinimumBid      int64 // smallest currency unit
	Description     string
	State           string
	District        string
	StartTime       time.Time
	EndTime         time.Time
	Status          AuctionStatus
	WinningBid      *int64
	WinningBidderID *uuid.UUID
	DecidedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewAuctionParams carries the owner supplied fields of a new listing.
type NewAuctionParams struct {
	OwnerID     uuid.UUID
	ItemName    string
	Quantity    int
	Unit        string
	MinimumBid  int64
	Description string
	State       string
	District    string
	Duration    time.Duration
}

// NewAuction opens an active auction starting at now.
func NewAuction(p NewAuctionParams, now time.Time) (*Auction, error) {
	if p.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidAuction)
	}
	a := &Auction{
		ID:          uuid.New(),
		OwnerID:     p.OwnerID,
		Status:      StatusActive,
		StartTime:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
		Description: strings.TrimSpace(p.Description),
		State:       strings.TrimSpace(p.State),
		District:    strings.TrimSpace(p.District),
	}
	if err := a.applyDetails(p.ItemName, p.Quantity, p.Unit, p.MinimumBid); err != nil {
		return nil, err
	}
	if err := a.applyDuration(p.Duration); err != nil {
		return nil, err
	}
	return a, nil
}

// AuctionChanges are the editable fields of an auction without bids. Nil means unchanged.
type AuctionChanges struct {
	ItemName    *string
	Quantity    *int
	Unit        *string
	MinimumBid  *int64
	Description *string
	State       *string
	District    *string
	Duration    *time.Duration
}

// Apply returns a copy with the changes applied, the receiver is left untouched.
func (a *Auction) Apply(c AuctionChanges, now time.Time) (*Auction, error) {
	next := a.Clone()

	itemName, quantity, unit, minimumBid := next.ItemName, next.Quantity, next.Unit, next.MinimumBid
	if c.ItemName != nil {
		itemName = *c.ItemName
	}
	if c.Quantity != nil {
		quantity = *c.Quantity
	}
	if c.Unit != nil {
		unit = *c.Unit
	}
	if c.MinimumBid != nil {
		minimumBid = *c.MinimumBid
	}
	if err := next.applyDetails(itemName, quantity, unit, minimumBid); err != nil {
		return nil, err
	}
	if c.Description != nil {
		next.Description = strings.TrimSpace(*c.Description)
	}
	if c.State != nil {
		next.State = strings.TrimSpace(*c.State)
	}
	if c.District != nil {
		next.District = strings.TrimSpace(*c.District)
	}
	if c.Duration != nil {
		if err := next.applyDuration(*c.Duration); err != nil {
			return nil, err
		}
	}
	next.UpdatedAt = now
	return next, nil
}

func (a *Auction) applyDetails(itemName string, quantity int, unit string, minimumBid int64) error {
	itemName = strings.TrimSpace(itemName)
	if itemName == "" {
		return fmt.Errorf("%w: item name is required", ErrInvalidAuction)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidAuction)
	}
	if minimumBid <= 0 {
		return fmt.Errorf("%w: minimum bid must be positive", ErrInvalidAuction)
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = defaultUnit
	}
	a.ItemName, a.Quantity, a.Unit, a.MinimumBid = itemName, quantity, unit, minimumBid
	return nil
}

// applyDuration recomputes EndTime from StartTime.
func (a *Auction) applyDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidAuction)
	}
	a.EndTime = a.StartTime.Add(d)
	return nil
}

// IsOwnedBy reports whether userID listed the auction.
func (a *Auction) IsOwnedBy(userID uuid.UUID) bool {
	return a.OwnerID == userID
}

// Clone returns a deep copy, pointer fields included.
func (a *Auction) Clone() *Auction {
	c := *a
	if a.WinningBid != nil {
		v := *a.WinningBid
		c.WinningBid = &v
	}
	if a.WinningBidderID != nil {
		v := *a.WinningBidderID
		c.WinningBidderID = &v
	}
	if a.DecidedAt != nil {
		v := *a.DecidedAt
		c.DecidedAt = &v
	}
	return &c
}

// moveTo applies a status change after checking the transition table. Winner fields follow
// the target status: set from winner when it carries one, cleared otherwise.
func (a *Auction) moveTo(next AuctionStatus, winner *Bid, now time.Time) error {
	if !a.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, next)
	}
	if next.HasWinner() {
		if winner == nil {
			return fmt.Errorf("%w: %s requires a winning bid", ErrInvalidTransition, next)
		}
		amount, bidder := winner.Amount, winner.BidderID
		a.WinningBid, a.WinningBidderID = &amount, &bidder
	} else {
		a.WinningBid, a.WinningBidderID = nil, nil
	}
	a.Status = next
	a.UpdatedAt = now
	return nil
}
