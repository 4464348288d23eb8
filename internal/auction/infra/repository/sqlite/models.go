package sqlite

import (
	"time"

	"github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type auctionModel struct {
	ID              uuid.UUID  `gorm:"type:text;primaryKey"`
	OwnerID         uuid.UUID  `gorm:"type:text;not null;index"`
	ItemName        string     `gorm:"not null"`
	Quantity        int        `gorm:"not null"`
	Unit            string     `gorm:"not null;default:kg"`
	MinimumBid      int64      `gorm:"not null"`
	Description     string     `gorm:"not null;default:''"`
	State           string     `gorm:"index"`
	District        string     `gorm:"index"`
	StartTime       time.Time  `gorm:"not null"`
	EndTime         time.Time  `gorm:"not null;index"`
	Status          string     `gorm:"not null;index"`
	WinningBid      *int64     `gorm:"default:null"`
	WinningBidderID *uuid.UUID `gorm:"type:text"`
	DecidedAt       *time.Time `gorm:"default:null"`
	CreatedAt       time.Time  `gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime:false"`
}

func (auctionModel) TableName() string { return "auctions" }

type bidModel struct {
	ID        uuid.UUID `gorm:"type:text;primaryKey"`
	AuctionID uuid.UUID `gorm:"type:text;not null;index"`
	BidderID  uuid.UUID `gorm:"type:text;not null;index"`
	Amount    int64     `gorm:"not null"`
	Timestamp time.Time `gorm:"not null"`
}

func (bidModel) TableName() string { return "bids" }

// AutoMigrate creates the auction tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&auctionModel{}, &bidModel{})
}

func toAuctionModel(a *domain.Auction) *auctionModel {
	m := &auctionModel{
		ID:              a.ID,
		OwnerID:         a.OwnerID,
		ItemName:        a.ItemName,
		Quantity:        a.Quantity,
		Unit:            a.Unit,
		MinimumBid:      a.MinimumBid,
		Description:     a.Description,
		State:           a.State,
		District:        a.District,
		StartTime:       a.StartTime.UTC(),
		EndTime:         a.EndTime.UTC(),
		Status:          string(a.Status),
		WinningBid:      a.WinningBid,
		WinningBidderID: a.WinningBidderID,
		CreatedAt:       a.CreatedAt.UTC(),
		UpdatedAt:       a.UpdatedAt.UTC(),
	}
	if a.DecidedAt != nil {
		t := a.DecidedAt.UTC()
		m.DecidedAt = &t
	}
	return m
}

func (m *auctionModel) toDomain() *domain.Auction {
	a := &domain.Auction{
		ID:              m.ID,
		OwnerID:         m.OwnerID,
		ItemName:        m.ItemName,
		Quantity:        m.Quantity,
		Unit:            m.Unit,
		MinimumBid:      m.MinimumBid,
		Description:     m.Description,
		State:           m.State,
		District:        m.District,
		StartTime:       m.StartTime.UTC(),
		EndTime:         m.EndTime.UTC(),
		Status:          domain.AuctionStatus(m.Status),
		WinningBid:      m.WinningBid,
		WinningBidderID: m.WinningBidderID,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
	if m.DecidedAt != nil {
		t := m.DecidedAt.UTC()
		a.DecidedAt = &t
	}
	return a
}

func toBidModel(b *domain.Bid) *bidModel {
	return &bidModel{ID: b.ID, AuctionID: b.AuctionID, BidderID: b.BidderID, Amount: b.Amount, Timestamp: b.Timestamp.UTC()}
}

func (m *bidModel) toDomain() *domain.Bid {
	return domain.NewBid(m.ID, m.AuctionID, m.BidderID, m.Amount, m.Timestamp.UTC())
}
