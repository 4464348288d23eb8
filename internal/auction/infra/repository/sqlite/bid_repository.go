package sqlite

import (
	"context"
	"errors"

	"github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BidRepository implements domain.BidRepository on the embedded store
type BidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) *BidRepository {
	return &BidRepository{db: db}
}

// Insert checks the auction is still active and the stored highest amount is expectedHighest,
// then writes the bid in the same transaction.
func (r *BidRepository) Insert(ctx context.Context, b *domain.Bid, expectedHighest int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var auction auctionModel
		err := tx.Select("status").First(&auction, "id = ?", b.AuctionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrAuctionNotFound
		}
		if err != nil {
			return err
		}
		if auction.Status != string(domain.StatusActive) {
			return domain.ErrStaleBid
		}

		var highest int64
		err = tx.Model(&bidModel{}).
			Where("auction_id = ?", b.AuctionID).
			Select("COALESCE(MAX(amount), 0)").
			Scan(&highest).Error
		if err != nil {
			return err
		}
		if highest != expectedHighest {
			return domain.ErrStaleBid
		}
		return tx.Create(toBidModel(b)).Error
	})
}

func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bid, error) {
	var m bidModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrBidNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *BidRepository) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	return r.list(ctx, "auction_id = ?", auctionID, "timestamp ASC")
}

func (r *BidRepository) ListByBidder(ctx context.Context, bidderID uuid.UUID) ([]*domain.Bid, error) {
	return r.list(ctx, "bidder_id = ?", bidderID, "timestamp DESC")
}

func (r *BidRepository) list(ctx context.Context, where string, arg uuid.UUID, order string) ([]*domain.Bid, error) {
	var rows []bidModel
	if err := r.db.WithContext(ctx).Where(where, arg).Order(order).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	bids := make([]*domain.Bid, 0, len(rows))
	for i := range rows {
		bids = append(bids, rows[i].toDomain())
	}
	return bids, nil
}

func (r *BidRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&bidModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrBidNotFound
	}
	return nil
}
