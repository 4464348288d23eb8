package domain

import (
	"sort"
	"strings"

	auctiondomain "github.com/cristianortiz/harvestBid/internal/auction/domain"
)

// BidStatus is how a single bid stands from its bidder's point of view.
type BidStatus string

const (
	BidWinning BidStatus = "winning"
	BidOutbid  BidStatus = "outbid"
	BidWon     BidStatus = "won"
	BidLost    BidStatus = "lost"
)

// StatusOfBid rates bid against the bids of its resolved auction. While the auction runs the
// bid is winning only if it is the current highest, ties going to the earlier bid. Once it
// stopped running the bid won when its amount equals the highest amount.
func StatusOfBid(bid *auctiondomain.Bid, a *auctiondomain.Auction, bids []*auctiondomain.Bid) BidStatus {
	highest := auctiondomain.HighestBid(bids)
	if a.Status != auctiondomain.StatusActive {
		if highest != nil && bid.Amount == highest.Amount {
			return BidWon
		}
		return BidLost
	}
	if highest == nil || highest.ID == bid.ID {
		return BidWinning
	}
	return BidOutbid
}

// Recommend picks up to limit auctions for a buyer. Auctions whose item name or description
// mention one of the interests come first, then the rest, each group ending soonest first.
// Without interests it returns the newest auctions. The input must already be the active
// auctions the buyer may bid on.
func Recommend(active []*auctiondomain.Auction, interests []string, limit int) []*auctiondomain.Auction {
	if limit <= 0 {
		return nil
	}
	keywords := make([]string, 0, len(interests))
	for _, i := range interests {
		if i = strings.ToLower(strings.TrimSpace(i)); i != "" {
			keywords = append(keywords, i)
		}
	}

	out := make([]*auctiondomain.Auction, len(active))
	copy(out, active)

	if len(keywords) == 0 {
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
		return capped(out, limit)
	}

	matched := make(map[*auctiondomain.Auction]bool, len(out))
	for _, a := range out {
		matched[a] = matchesAny(a, keywords)
	}
	sort.SliceStable(out, func(i, j int) bool {
		mi, mj := matched[out[i]], matched[out[j]]
		if mi != mj {
			return mi
		}
		return out[i].EndTime.Before(out[j].EndTime)
	})
	return capped(out, limit)
}

func matchesAny(a *auctiondomain.Auction, keywords []string) bool {
	name := strings.ToLower(a.ItemName)
	desc := strings.ToLower(a.Description)
	for _, k := range keywords {
		if strings.Contains(name, k) || strings.Contains(desc, k) {
			return true
		}
	}
	return false
}

func capped(in []*auctiondomain.Auction, limit int) []*auctiondomain.Auction {
	if len(in) > limit {
		return in[:limit]
	}
	return in
}
