package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuctionRepository implements domain.AuctionRepository on the embedded store
type AuctionRepository struct {
	db *gorm.DB
}

func NewAuctionRepository(db *gorm.DB) *AuctionRepository {
	return &AuctionRepository{db: db}
}

func (r *AuctionRepository) Create(ctx context.Context, a *domain.Auction) error {
	return r.db.WithContext(ctx).Create(toAuctionModel(a)).Error
}

func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	var m auctionModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAuctionNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *AuctionRepository) List(ctx context.Context, f domain.AuctionFilter) ([]*domain.Auction, error) {
	q := r.db.WithContext(ctx).Model(&auctionModel{})
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.OwnerID != uuid.Nil {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	var rows []auctionModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAuctions(rows), nil
}

func (r *AuctionRepository) ListActiveEndingBefore(ctx context.Context, t time.Time) ([]*domain.Auction, error) {
	var rows []auctionModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_time <= ?", string(domain.StatusActive), t.UTC()).
		Order("end_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toAuctions(rows), nil
}

// Update overwrites the stored row only while its status is still expected.
func (r *AuctionRepository) Update(ctx context.Context, a *domain.Auction, expected domain.AuctionStatus) error {
	m := toAuctionModel(a)
	res := r.db.WithContext(ctx).
		Model(&auctionModel{ID: a.ID}).
		Where("status = ?", string(expected)).
		Select("*").Omit("id", "created_at").
		Updates(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOrStale(ctx, a.ID)
	}
	return nil
}

func (r *AuctionRepository) missingOrStale(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&auctionModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrAuctionNotFound
	}
	return domain.ErrStaleAuction
}

func (r *AuctionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&auctionModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAuctionNotFound
	}
	return nil
}

func toAuctions(rows []auctionModel) []*domain.Auction {
	out := make([]*domain.Auction, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}
