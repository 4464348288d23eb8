package application

import (
	"time"

	"github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/google/uuid"
)

// AuctionDTO is the wire shape of an auction for HTTP and WS clients
type AuctionDTO struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	ItemName        string     `json:"item_name"`
	Quantity        int        `json:"quantity"`
	Unit            string     `json:"unit"`
	MinimumBid      int64      `json:"minimum_bid"`
	Description     string     `json:"description,omitempty"`
	State           string     `json:"state,omitempty"`
	District        string     `json:"district,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	Status          string     `json:"status"`
	WinningBid      *int64     `json:"winning_bid,omitempty"`
	WinningBidderID *uuid.UUID `json:"winning_bidder_id,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func ToAuctionDTO(a *domain.Auction) *AuctionDTO {
	return &AuctionDTO{
		ID:              a.ID,
		OwnerID:         a.OwnerID,
		ItemName:        a.ItemName,
		Quantity:        a.Quantity,
		Unit:            a.Unit,
		MinimumBid:      a.MinimumBid,
		Description:     a.Description,
		State:           a.State,
		District:        a.District,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		Status:          string(a.Status),
		WinningBid:      a.WinningBid,
		WinningBidderID: a.WinningBidderID,
		DecidedAt:       a.DecidedAt,
		CreatedAt:       a.CreatedAt,
	}
}

// AuctionViewDTO is an auction plus the figures a bidder needs before bidding.
type AuctionViewDTO struct {
	Auction           *AuctionDTO `json:"auction"`
	CurrentHighestBid int64       `json:"current_highest_bid"`
	BidCount          int         `json:"bid_count"`
	MinimumIncrement  int64       `json:"minimum_increment"`
	MinimumNextBid    int64       `json:"minimum_next_bid"`
}

// BuildView computes the view of an already resolved auction.
func BuildView(a *domain.Auction, bids []*domain.Bid) *AuctionViewDTO {
	q := domain.QuoteFor(a, bids)
	return &AuctionViewDTO{
		Auction:           ToAuctionDTO(a),
		CurrentHighestBid: q.CurrentHighest,
		BidCount:          len(bids),
		MinimumIncrement:  q.MinimumIncrement,
		MinimumNextBid:    q.MinimumNextBid,
	}
}

type BidDTO struct {
	ID        uuid.UUID `json:"id"`
	AuctionID uuid.UUID `json:"auction_id"`
	BidderID  uuid.UUID `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

func ToBidDTO(b *domain.Bid) *BidDTO {
	return &BidDTO{ID: b.ID, AuctionID: b.AuctionID, BidderID: b.BidderID, Amount: b.Amount, Timestamp: b.Timestamp}
}

type RejectionDTO struct {
	Reason           string `json:"reason"`
	Message          string `json:"message"`
	MinimumNextBid   int64  `json:"minimum_next_bid,omitempty"`
	MinimumIncrement int64  `json:"minimum_increment,omitempty"`
	CurrentHighest   int64  `json:"current_highest,omitempty"`
}

func toRejectionDTO(r *domain.Rejection) *RejectionDTO {
	if r == nil {
		return nil
	}
	return &RejectionDTO{
		Reason:           string(r.Reason),
		Message:          r.Message,
		MinimumNextBid:   r.MinimumNextBid,
		MinimumIncrement: r.MinimumIncrement,
		CurrentHighest:   r.CurrentHighest,
	}
}
