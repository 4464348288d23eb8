package domain

import (
	"context"
	"time"

	"github.com/cristianortiz/harvestBid/internal/shared/apperr"
	"github.com/google/uuid"
)

type Kind string

const (
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindSuccess Kind = "success"
)

// RecipientRole mirrors the role the recipient acts in for the related auction.
type RecipientRole string

const (
	RecipientFarmer RecipientRole = "farmer"
	RecipientBuyer  RecipientRole = "buyer"
)

var (
	ErrNotificationNotFound = apperr.New(apperr.ErrNotFound, "notification not found")
	ErrNotRecipient         = apperr.New(apperr.ErrAuthorization, "notification belongs to another user")
)

// Notification is only ever created as a side effect of a bid or lifecycle event. After that
// the read flag is the one thing that changes.
type Notification struct {
	ID            uuid.UUID
	RecipientID   uuid.UUID
	RecipientRole RecipientRole
	Title         string
	Message       string
	Kind          Kind
	AuctionID     *uuid.UUID
	Read          bool
	ReadAt        *time.Time
	CreatedAt     time.Time
}

func NewNotification(recipient uuid.UUID, role RecipientRole, kind Kind, title, message string, auctionID uuid.UUID, now time.Time) *Notification {
	n := &Notification{
		ID:            uuid.New(),
		RecipientID:   recipient,
		RecipientRole: role,
		Title:         title,
		Message:       message,
		Kind:          kind,
		CreatedAt:     now,
	}
	if auctionID != uuid.Nil {
		n.AuctionID = &auctionID
	}
	return n
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	// ListByRecipient returns newest first.
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error
	// MarkAllRead returns how many notifications flipped to read.
	MarkAllRead(ctx context.Context, recipientID uuid.UUID, at time.Time) (int, error)
}
