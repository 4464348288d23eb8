package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/cristianortiz/harvestBid/internal/notification/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type notificationModel struct {
	ID            uuid.UUID  `gorm:"type:text;primaryKey"`
	RecipientID   uuid.UUID  `gorm:"type:text;not null;index:idx_notifications_recipient"`
	RecipientRole string     `gorm:"not null"`
	Title         string     `gorm:"not null"`
	Message       string     `gorm:"not null"`
	Kind          string     `gorm:"not null"`
	AuctionID     *uuid.UUID `gorm:"type:text"`
	Read          bool       `gorm:"not null;default:false;index:idx_notifications_recipient"`
	ReadAt        *time.Time
	CreatedAt     time.Time  `gorm:"autoCreateTime:false"`
}

func (notificationModel) TableName() string { return "notifications" }

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&notificationModel{})
}

// NotificationRepository implements domain.NotificationRepository on the embedded store
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	m := &notificationModel{
		ID:            n.ID,
		RecipientID:   n.RecipientID,
		RecipientRole: string(n.RecipientRole),
		Title:         n.Title,
		Message:       n.Message,
		Kind:          string(n.Kind),
		AuctionID:     n.AuctionID,
		Read:          n.Read,
		ReadAt:        n.ReadAt,
		CreatedAt:     n.CreatedAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var m notificationModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*domain.Notification, error) {
	q := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	var rows []notificationModel
	if err := q.Order("created_at DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Notification, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&notificationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"read": true, "read_at": at.UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID, at time.Time) (int, error) {
	res := r.db.WithContext(ctx).Model(&notificationModel{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Updates(map[string]any{"read": true, "read_at": at.UTC()})
	return int(res.RowsAffected), res.Error
}

func (m *notificationModel) toDomain() *domain.Notification {
	n := &domain.Notification{
		ID:            m.ID,
		RecipientID:   m.RecipientID,
		RecipientRole: domain.RecipientRole(m.RecipientRole),
		Title:         m.Title,
		Message:       m.Message,
		Kind:          domain.Kind(m.Kind),
		AuctionID:     m.AuctionID,
		Read:          m.Read,
		CreatedAt:     m.CreatedAt.UTC(),
	}
	if m.ReadAt != nil {
		t := m.ReadAt.UTC()
		n.ReadAt = &t
	}
	return n
}
