package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristianortiz/harvestBid/internal/notification/domain"
	"github.com/cristianortiz/harvestBid/internal/shared/clock"
	"github.com/google/uuid"
)

type NotificationDTO struct {
	ID            uuid.UUID  `json:"id"`
	RecipientRole string     `json:"recipient_role"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	Kind          string     `json:"kind"`
	AuctionID     *uuid.UUID `json:"auction_id,omitempty"`
	Read          bool       `json:"read"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toDTO(n *domain.Notification) *NotificationDTO {
	return &NotificationDTO{
		ID:            n.ID,
		RecipientRole: string(n.RecipientRole),
		Title:         n.Title,
		Message:       n.Message,
		Kind:          string(n.Kind),
		AuctionID:     n.AuctionID,
		Read:          n.Read,
		ReadAt:        n.ReadAt,
		CreatedAt:     n.CreatedAt,
	}
}

type InboxDTO struct {
	Notifications []*NotificationDTO `json:"notifications"`
	Unread        int                `json:"unread"`
}

// Service exposes a user's inbox. Notifications are never deleted, only marked read by the
// user they belong to.
type Service struct {
	repo  domain.NotificationRepository
	clock clock.Clock
}

func NewService(repo domain.NotificationRepository, c clock.Clock) *Service {
	return &Service{repo: repo, clock: c}
}

func (s *Service) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) (*InboxDTO, error) {
	items, err := s.repo.ListByRecipient(ctx, recipientID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := &InboxDTO{Notifications: make([]*NotificationDTO, 0, len(items))}
	for _, n := range items {
		if !n.Read {
			out.Unread++
		}
		out.Notifications = append(out.Notifications, toDTO(n))
	}
	return out, nil
}

// MarkRead flips one notification to read. Marking twice keeps the first read time.
func (s *Service) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) (*NotificationDTO, error) {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	if n.RecipientID != recipientID {
		return nil, fmt.Errorf("mark notification read: %w", domain.ErrNotRecipient)
	}
	if n.Read {
		return toDTO(n), nil
	}
	now := s.clock.Now()
	if err := s.repo.MarkRead(ctx, n.ID, now); err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			return nil, fmt.Errorf("mark notification read: %w", err)
		}
		return nil, fmt.Errorf("mark notification read: store: %w", err)
	}
	n.Read, n.ReadAt = true, &now
	return toDTO(n), nil
}

func (s *Service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int, error) {
	count, err := s.repo.MarkAllRead(ctx, recipientID, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return count, nil
}
