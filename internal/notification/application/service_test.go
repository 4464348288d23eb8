package application

import (
	"context"
	"testing"
	"time"

	"github.com/cristianortiz/harvestBid/internal/notification/domain"
	"github.com/cristianortiz/harvestBid/internal/notification/infra/repository/sqlite"
	"github.com/cristianortiz/harvestBid/internal/shared/clock"
	"github.com/cristianortiz/harvestBid/internal/shared/db/dbtest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedInbox(t *testing.T, repo domain.NotificationRepository, recipient uuid.UUID, n int) []*domain.Notification {
	t.Helper()
	out := make([]*domain.Notification, 0, n)
	for i := 0; i < n; i++ {
		item := domain.NewNotification(recipient, domain.RecipientBuyer, domain.KindWarning,
			"You have been outbid", "Someone bid more.", uuid.New(), now.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(context.Background(), item))
		out = append(out, item)
	}
	return out
}

func TestInboxMarkRead(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewNotificationRepository(dbtest.MustOpen(t, sqlite.AutoMigrate))
	fc := clock.NewFixed(now.Add(time.Hour))
	svc := NewService(repo, fc)

	me, other := uuid.New(), uuid.New()
	items := seedInbox(t, repo, me, 3)
	seedInbox(t, repo, other, 1)

	inbox, err := svc.List(ctx, me, false)
	require.NoError(t, err)
	assert.Len(t, inbox.Notifications, 3)
	assert.Equal(t, 3, inbox.Unread)

	read, err := svc.MarkRead(ctx, me, items[0].ID)
	require.NoError(t, err)
	assert.True(t, read.Read)
	firstRead := *read.ReadAt

	// marking again keeps the original timestamp
	fc.Advance(time.Hour)
	again, err := svc.MarkRead(ctx, me, items[0].ID)
	require.NoError(t, err)
	assert.True(t, again.ReadAt.Equal(firstRead))

	_, err = svc.MarkRead(ctx, other, items[1].ID)
	assert.ErrorIs(t, err, domain.ErrNotRecipient)

	_, err = svc.MarkRead(ctx, me, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)

	unread, err := svc.List(ctx, me, true)
	require.NoError(t, err)
	assert.Len(t, unread.Notifications, 2)
}

func TestInboxMarkAllRead(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewNotificationRepository(dbtest.MustOpen(t, sqlite.AutoMigrate))
	svc := NewService(repo, clock.NewFixed(now.Add(time.Hour)))

	me, other := uuid.New(), uuid.New()
	seedInbox(t, repo, me, 2)
	seedInbox(t, repo, other, 2)

	count, err := svc.MarkAllRead(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = svc.MarkAllRead(ctx, me)
	require.NoError(t, err)
	assert.Zero(t, count)

	inbox, err := svc.List(ctx, other, false)
	require.NoError(t, err)
	assert.Equal(t, 2, inbox.Unread)
}
