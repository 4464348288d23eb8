package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	auctiondomain "github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/cristianortiz/harvestBid/internal/notification/domain"
	"github.com/cristianortiz/harvestBid/internal/shared/clock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// memoryRepo keeps notifications in a slice and can refuse writes for chosen recipients.
type memoryRepo struct {
	mu      sync.Mutex
	items   []*domain.Notification
	failFor map[uuid.UUID]bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{failFor: map[uuid.UUID]bool{}}
}

func (r *memoryRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[n.RecipientID] {
		return errors.New("disk full")
	}
	r.items = append(r.items, n)
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, domain.ErrNotificationNotFound
}

func (r *memoryRepo) ListByRecipient(_ context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Notification
	for _, n := range r.items {
		if n.RecipientID == recipientID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memoryRepo) MarkRead(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id {
			n.Read, n.ReadAt = true, &at
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (r *memoryRepo) MarkAllRead(_ context.Context, recipientID uuid.UUID, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.items {
		if n.RecipientID == recipientID && !n.Read {
			n.Read, n.ReadAt = true, &at
			count++
		}
	}
	return count, nil
}

func (r *memoryRepo) titlesFor(id uuid.UUID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.items {
		if n.RecipientID == id {
			out = append(out, n.Title)
		}
	}
	return out
}

func testAuction(t *testing.T) *auctiondomain.Auction {
	t.Helper()
	a, err := auctiondomain.NewAuction(auctiondomain.NewAuctionParams{
		OwnerID:    uuid.New(),
		ItemName:   "Basmati rice",
		Quantity:   100,
		MinimumBid: 14000,
		Duration:   24 * time.Hour,
	}, now)
	require.NoError(t, err)
	return a
}

func bidBy(a *auctiondomain.Auction, bidder uuid.UUID, amount int64, offset time.Duration) *auctiondomain.Bid {
	return auctiondomain.NewBid(uuid.New(), a.ID, bidder, amount, now.Add(offset))
}

func TestBidPlacedNotifiesOwnerAndOutbidOnce(t *testing.T) {
	repo := newMemoryRepo()
	d := NewDispatcher(repo, clock.NewFixed(now), nil)
	a := testAuction(t)
	x, y, z := uuid.New(), uuid.New(), uuid.New()

	// X bids twice, Y once, then Z outbids everyone
	prior := []*auctiondomain.Bid{
		bidBy(a, x, 14700, time.Minute),
		bidBy(a, y, 15435, 2*time.Minute),
		bidBy(a, x, 16300, 3*time.Minute),
	}
	newBid := bidBy(a, z, 17200, 4*time.Minute)

	require.NoError(t, d.BidPlaced(context.Background(), a, newBid, prior))

	assert.Equal(t, []string{"New bid received"}, repo.titlesFor(a.OwnerID))
	assert.Equal(t, []string{"You have been outbid"}, repo.titlesFor(x))
	assert.Equal(t, []string{"You have been outbid"}, repo.titlesFor(y))
	assert.Empty(t, repo.titlesFor(z))
	assert.Len(t, repo.items, 3)

	owner := repo.items[0]
	assert.Equal(t, domain.KindInfo, owner.Kind)
	assert.Equal(t, domain.RecipientFarmer, owner.RecipientRole)
	assert.Equal(t, "A bid of ₹17,200 was placed on your Basmati rice auction.", owner.Message)
	assert.Equal(t, a.ID, *owner.AuctionID)
	assert.Equal(t, domain.KindWarning, repo.items[1].Kind)
}

func TestBidPlacedSkipsNewBiddersEarlierBids(t *testing.T) {
	repo := newMemoryRepo()
	d := NewDispatcher(repo, clock.NewFixed(now), nil)
	a := testAuction(t)
	x := uuid.New()

	prior := []*auctiondomain.Bid{bidBy(a, x, 14700, time.Minute)}
	require.NoError(t, d.BidPlaced(context.Background(), a, bidBy(a, x, 15500, 2*time.Minute), prior))

	assert.Empty(t, repo.titlesFor(x))
	assert.Len(t, repo.items, 1)
}

func TestBidPlacedPartialFailure(t *testing.T) {
	repo := newMemoryRepo()
	d := NewDispatcher(repo, clock.NewFixed(now), nil)
	a := testAuction(t)
	x, y, z := uuid.New(), uuid.New(), uuid.New()
	repo.failFor[x] = true

	prior := []*auctiondomain.Bid{bidBy(a, x, 14700, time.Minute), bidBy(a, y, 15435, 2*time.Minute)}
	err := d.BidPlaced(context.Background(), a, bidBy(a, z, 16300, 3*time.Minute), prior)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	// the other recipients were still written
	assert.Len(t, repo.titlesFor(a.OwnerID), 1)
	assert.Len(t, repo.titlesFor(y), 1)
	assert.Empty(t, repo.titlesFor(x))
}

func TestAuctionSoldNotifiesWinnerAndOwner(t *testing.T) {
	repo := newMemoryRepo()
	d := NewDispatcher(repo, clock.NewFixed(now), nil)
	a := testAuction(t)
	winner := bidBy(a, uuid.New(), 15000, time.Minute)

	require.NoError(t, d.AuctionSold(context.Background(), a, winner))
	assert.Equal(t, []string{"Auction won"}, repo.titlesFor(winner.BidderID))
	assert.Equal(t, []string{"Auction sold"}, repo.titlesFor(a.OwnerID))
	for _, n := range repo.items {
		assert.Equal(t, domain.KindSuccess, n.Kind)
	}
}

func TestAuctionDecided(t *testing.T) {
	repo := newMemoryRepo()
	d := NewDispatcher(repo, clock.NewFixed(now), nil)
	a := testAuction(t)
	b := bidBy(a, uuid.New(), 15000, time.Minute)

	require.NoError(t, d.AuctionDecided(context.Background(), a, auctiondomain.DecisionReject, nil))
	assert.Empty(t, repo.items)

	require.NoError(t, d.AuctionDecided(context.Background(), a, auctiondomain.DecisionAccept, b))
	assert.Equal(t, []string{"Bid accepted"}, repo.titlesFor(b.BidderID))
	assert.Empty(t, repo.titlesFor(a.OwnerID))
}
