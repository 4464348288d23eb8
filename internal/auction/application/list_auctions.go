package application

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/google/uuid"
)

const (
	SortEndTime = "endTime"
	SortPrice   = "price"
	SortLatest  = "latest"
	SortPopular = "popular"

	StatusAll = "all"
)

// ListAuctionsDTO holds the listing filters. Empty Status means active, "all" disables the
// status filter.
type ListAuctionsDTO struct {
	Status   string    `query:"status" validate:"omitempty,oneof=all active ended sold completed rejected"`
	Item     string    `query:"crop"`
	State    string    `query:"state"`
	MinPrice int64     `query:"minPrice" validate:"gte=0"`
	MaxPrice int64     `query:"maxPrice" validate:"gte=0"`
	SortBy   string    `query:"sortBy" validate:"omitempty,oneof=endTime price latest popular"`
	OwnerID  uuid.UUID `query:"-"`
}

// ListAuctionsUseCase returns auction views after lazily closing the ones whose time is up.
type ListAuctionsUseCase struct {
	resolver
}

func NewListAuctionsUseCase(d Deps) *ListAuctionsUseCase {
	return &ListAuctionsUseCase{resolver{d: d.withDefaults()}}
}

func (uc *ListAuctionsUseCase) Execute(ctx context.Context, q ListAuctionsDTO) ([]*AuctionViewDTO, error) {
	status := q.Status
	if status == "" {
		status = string(domain.StatusActive)
	}

	// stored status can still move, so filter on the resolved one
	reader := &SnapshotReader{uc.resolver}
	snaps, err := reader.Snapshots(ctx, domain.AuctionFilter{OwnerID: q.OwnerID})
	if err != nil {
		return nil, fmt.Errorf("list auctions use case: %w", err)
	}

	views := make([]*AuctionViewDTO, 0, len(snaps))
	for _, s := range snaps {
		v := BuildView(s.Auction, s.Bids)
		if matchesListing(v, q, status) {
			views = append(views, v)
		}
	}
	sortViews(views, q.SortBy)
	return views, nil
}

func matchesListing(v *AuctionViewDTO, q ListAuctionsDTO, status string) bool {
	if status != StatusAll && v.Auction.Status != status {
		return false
	}
	if q.Item != "" && !containsFold(v.Auction.ItemName, q.Item) {
		return false
	}
	if q.State != "" && !containsFold(v.Auction.State, q.State) {
		return false
	}
	if q.MinPrice > 0 && v.CurrentHighestBid < q.MinPrice {
		return false
	}
	if q.MaxPrice > 0 && v.CurrentHighestBid > q.MaxPrice {
		return false
	}
	return true
}

func sortViews(views []*AuctionViewDTO, by string) {
	switch by {
	case SortPrice:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].CurrentHighestBid < views[j].CurrentHighestBid
		})
	case SortLatest:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].Auction.CreatedAt.After(views[j].Auction.CreatedAt)
		})
	case SortPopular:
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].BidCount > views[j].BidCount
		})
	default:
		active := string(domain.StatusActive)
		sort.SliceStable(views, func(i, j int) bool {
			ai, aj := views[i].Auction.Status == active, views[j].Auction.Status == active
			if ai != aj {
				return ai
			}
			return views[i].Auction.EndTime.Before(views[j].Auction.EndTime)
		})
	}
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}
