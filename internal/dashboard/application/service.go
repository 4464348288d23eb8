package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	auctionapp "github.com/cristianortiz/harvestBid/internal/auction/application"
	auctiondomain "github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/cristianortiz/harvestBid/internal/dashboard/domain"
	"github.com/cristianortiz/harvestBid/internal/shared/logger"
	userdomain "github.com/cristianortiz/harvestBid/internal/user/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const recentBidsShown = 5

// AuctionSource yields resolved auctions with their bids.
type AuctionSource interface {
	Snapshot(ctx context.Context, auctionID uuid.UUID) (*auctionapp.AuctionSnapshot, error)
	Snapshots(ctx context.Context, f auctiondomain.AuctionFilter) ([]*auctionapp.AuctionSnapshot, error)
}

type UserSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userdomain.User, error)
}

type StatusCounts struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Ended     int `json:"ended"`
	Sold      int `json:"sold"`
	Completed int `json:"completed"`
	Rejected  int `json:"rejected"`
}

func (c *StatusCounts) add(s auctiondomain.AuctionStatus) {
	c.Total++
	switch s {
	case auctiondomain.StatusActive:
		c.Active++
	case auctiondomain.StatusEnded:
		c.Ended++
	case auctiondomain.StatusSold:
		c.Sold++
	case auctiondomain.StatusCompleted:
		c.Completed++
	case auctiondomain.StatusRejected:
		c.Rejected++
	}
}

type RecentBidDTO struct {
	BidID     uuid.UUID `json:"bid_id"`
	AuctionID uuid.UUID `json:"auction_id"`
	ItemName  string    `json:"item_name"`
	BidderID  uuid.UUID `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

type OwnerStatsDTO struct {
	Auctions          StatusCounts    `json:"auctions"`
	TotalRevenue      int64           `json:"total_revenue"`
	ProfileCompletion int             `json:"profile_completion"`
	RecentBids        []*RecentBidDTO `json:"recent_bids"`
}

type BidCounts struct {
	Total   int `json:"total"`
	Winning int `json:"winning"`
	Outbid  int `json:"outbid"`
	Won     int `json:"won"`
	Lost    int `json:"lost"`
}

type BidderStatsDTO struct {
	Bids              BidCounts `json:"bids"`
	WonAuctions       int       `json:"won_auctions"`
	ActiveAuctions    int       `json:"active_auctions"`
	TotalSpent        int64     `json:"total_spent"`
	ProfileCompletion int       `json:"profile_completion"`
}

type BidHistoryItemDTO struct {
	BidID          uuid.UUID `json:"bid_id"`
	Amount         int64     `json:"amount"`
	Timestamp      time.Time `json:"timestamp"`
	Status         string    `json:"status"`
	AuctionID      uuid.UUID `json:"auction_id"`
	ItemName       string    `json:"item_name"`
	Quantity       int       `json:"quantity"`
	Unit           string    `json:"unit"`
	AuctionStatus  string    `json:"auction_status"`
	EndTime        time.Time `json:"end_time"`
	CurrentHighest int64     `json:"current_highest"`
	Location       string    `json:"location,omitempty"`
}

// Service computes read-only dashboard views. Every auction it looks at is resolved first,
// so statistics never count an expired auction as running.
type Service struct {
	auctions    AuctionSource
	bids        auctiondomain.BidRepository
	users       UserSource
	defaultSize int
}

func NewService(auctions AuctionSource, bids auctiondomain.BidRepository, users UserSource, recommendationLimit int) *Service {
	if recommendationLimit <= 0 {
		recommendationLimit = 6
	}
	return &Service{auctions: auctions, bids: bids, users: users, defaultSize: recommendationLimit}
}

func (s *Service) OwnerStatistics(ctx context.Context, ownerID uuid.UUID) (*OwnerStatsDTO, error) {
	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("owner statistics: %w", err)
	}
	snaps, err := s.auctions.Snapshots(ctx, auctiondomain.AuctionFilter{OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("owner statistics: %w", err)
	}

	out := &OwnerStatsDTO{ProfileCompletion: owner.ProfileCompletion(), RecentBids: []*RecentBidDTO{}}
	var recent []*RecentBidDTO
	for _, snap := range snaps {
		a := snap.Auction
		out.Auctions.add(a.Status)
		if a.Status.HasWinner() && a.WinningBid != nil {
			out.TotalRevenue += *a.WinningBid
		}
		for _, b := range snap.Bids {
			recent = append(recent, &RecentBidDTO{
				BidID: b.ID, AuctionID: a.ID, ItemName: a.ItemName,
				BidderID: b.BidderID, Amount: b.Amount, Timestamp: b.Timestamp,
			})
		}
	}
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Timestamp.After(recent[j].Timestamp) })
	if len(recent) > recentBidsShown {
		recent = recent[:recentBidsShown]
	}
	out.RecentBids = append(out.RecentBids, recent...)
	return out, nil
}

// bidderAuctions resolves every auction the bidder took part in, keyed by id.
func (s *Service) bidderAuctions(ctx context.Context, bids []*auctiondomain.Bid) (map[uuid.UUID]*auctionapp.AuctionSnapshot, error) {
	snaps := make(map[uuid.UUID]*auctionapp.AuctionSnapshot)
	for _, b := range bids {
		if _, ok := snaps[b.AuctionID]; ok {
			continue
		}
		snap, err := s.auctions.Snapshot(ctx, b.AuctionID)
		if err != nil {
			return nil, err
		}
		snaps[b.AuctionID] = snap
	}
	return snaps, nil
}

func (s *Service) BidderStatistics(ctx context.Context, bidderID uuid.UUID) (*BidderStatsDTO, error) {
	bidder, err := s.users.GetByID(ctx, bidderID)
	if err != nil {
		return nil, fmt.Errorf("bidder statistics: %w", err)
	}
	bids, err := s.bids.ListByBidder(ctx, bidderID)
	if err != nil {
		return nil, fmt.Errorf("bidder statistics: %w", err)
	}
	snaps, err := s.bidderAuctions(ctx, bids)
	if err != nil {
		return nil, fmt.Errorf("bidder statistics: %w", err)
	}

	out := &BidderStatsDTO{ProfileCompletion: bidder.ProfileCompletion()}
	for _, b := range bids {
		snap := snaps[b.AuctionID]
		out.Bids.Total++
		switch domain.StatusOfBid(b, snap.Auction, snap.Bids) {
		case domain.BidWinning:
			out.Bids.Winning++
		case domain.BidOutbid:
			out.Bids.Outbid++
		case domain.BidWon:
			out.Bids.Won++
		case domain.BidLost:
			out.Bids.Lost++
		}
	}
	for _, snap := range snaps {
		a := snap.Auction
		if a.Status == auctiondomain.StatusActive {
			out.ActiveAuctions++
		}
		if a.Status.HasWinner() && a.WinningBidderID != nil && *a.WinningBidderID == bidderID {
			out.WonAuctions++
			out.TotalSpent += *a.WinningBid
		}
	}
	return out, nil
}

// BidHistory lists the bidder's bids newest first with the standing of each.
func (s *Service) BidHistory(ctx context.Context, bidderID uuid.UUID) ([]*BidHistoryItemDTO, error) {
	bids, err := s.bids.ListByBidder(ctx, bidderID)
	if err != nil {
		return nil, fmt.Errorf("bid history: %w", err)
	}
	snaps, err := s.bidderAuctions(ctx, bids)
	if err != nil {
		return nil, fmt.Errorf("bid history: %w", err)
	}

	out := make([]*BidHistoryItemDTO, 0, len(bids))
	for _, b := range bids {
		snap := snaps[b.AuctionID]
		a := snap.Auction
		item := &BidHistoryItemDTO{
			BidID:          b.ID,
			Amount:         b.Amount,
			Timestamp:      b.Timestamp,
			Status:         string(domain.StatusOfBid(b, a, snap.Bids)),
			AuctionID:      a.ID,
			ItemName:       a.ItemName,
			Quantity:       a.Quantity,
			Unit:           a.Unit,
			AuctionStatus:  string(a.Status),
			EndTime:        a.EndTime,
			CurrentHighest: auctiondomain.QuoteFor(a, snap.Bids).CurrentHighest,
		}
		if a.District != "" || a.State != "" {
			item.Location = a.District + ", " + a.State
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// Recommendations suggests running auctions for a buyer. limit <= 0 uses the configured
// default.
func (s *Service) Recommendations(ctx context.Context, bidderID uuid.UUID, limit int) ([]*auctionapp.AuctionViewDTO, error) {
	if limit <= 0 {
		limit = s.defaultSize
	}
	var interests []string
	u, err := s.users.GetByID(ctx, bidderID)
	switch {
	case errors.Is(err, userdomain.ErrUserNotFound):
		// unknown users still get the newest auctions
		log.Debug("recommendations without profile", zap.String("bidderID", bidderID.String()))
	case err != nil:
		return nil, fmt.Errorf("recommendations: %w", err)
	default:
		interests = u.Interests
	}

	snaps, err := s.auctions.Snapshots(ctx, auctiondomain.AuctionFilter{})
	if err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}
	bidsOf := make(map[*auctiondomain.Auction][]*auctiondomain.Bid, len(snaps))
	active := make([]*auctiondomain.Auction, 0, len(snaps))
	for _, snap := range snaps {
		if snap.Auction.Status != auctiondomain.StatusActive || snap.Auction.IsOwnedBy(bidderID) {
			continue
		}
		active = append(active, snap.Auction)
		bidsOf[snap.Auction] = snap.Bids
	}

	picked := domain.Recommend(active, interests, limit)
	out := make([]*auctionapp.AuctionViewDTO, 0, len(picked))
	for _, a := range picked {
		out = append(out, auctionapp.BuildView(a, bidsOf[a]))
	}
	return out, nil
}
