package domain

import "github.com/cristianortiz/harvestBid/internal/shared/apperr"

var (
	ErrAuctionNotFound = apperr.New(apperr.ErrNotFound, "auction not found")
	ErrBidNotFound     = apperr.New(apperr.ErrNotFound, "bid not found")

	ErrInvalidAuction  = apperr.New(apperr.ErrValidation, "invalid auction")
	ErrInvalidDecision = apperr.New(apperr.ErrValidation, "action must be accept or reject")

	ErrAuctionNotEnded      = apperr.New(apperr.ErrInvalidState, "auction is not ended yet")
	ErrAuctionNotActive     = apperr.New(apperr.ErrInvalidState, "auction is not active")
	ErrInvalidTransition    = apperr.New(apperr.ErrInvalidState, "invalid status transition")
	ErrAuctionHasBids       = apperr.New(apperr.ErrInvalidState, "auction already has bids")
	ErrHighestBidWithdrawal = apperr.New(apperr.ErrInvalidState, "cannot withdraw the highest bid")

	ErrNotAuctionOwner = apperr.New(apperr.ErrAuthorization, "only the auction owner can do this")
	ErrNotBidOwner     = apperr.New(apperr.ErrAuthorization, "only the bidder can do this")

	// optimistic write checks, the caller re-reads and retries
	ErrStaleAuction = apperr.New(apperr.ErrConflict, "auction changed since it was read")
	ErrStaleBid     = apperr.New(apperr.ErrConflict, "highest bid changed since it was read")
	ErrAuctionBusy  = apperr.New(apperr.ErrConflict, "auction is busy, try again")
)
