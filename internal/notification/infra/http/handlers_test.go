package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cristianortiz/harvestBid/internal/notification/application"
	"github.com/cristianortiz/harvestBid/internal/notification/domain"
	"github.com/cristianortiz/harvestBid/internal/notification/infra/repository/sqlite"
	"github.com/cristianortiz/harvestBid/internal/shared/clock"
	"github.com/cristianortiz/harvestBid/internal/shared/db/dbtest"
	"github.com/cristianortiz/harvestBid/internal/shared/httpserver"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboxEndpoints(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := sqlite.NewNotificationRepository(dbtest.MustOpen(t, sqlite.AutoMigrate))
	s := httpserver.NewServer(nil, NewNotificationHandler(application.NewService(repo, clock.NewFixed(now))))

	me, stranger := uuid.New(), uuid.New()
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		n := domain.NewNotification(me, domain.RecipientFarmer, domain.KindInfo, "New bid received", "A bid was placed.", uuid.New(), now.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(context.Background(), n))
		ids = append(ids, n.ID)
	}

	call := func(method, path string, user uuid.UUID, out any) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set(httpserver.UserHeader, user.String())
		resp, err := s.App().Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		if out != nil {
			require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
		}
		return resp.StatusCode
	}

	var inbox application.InboxDTO
	assert.Equal(t, http.StatusOK, call(http.MethodGet, "/notifications", me, &inbox))
	assert.Len(t, inbox.Notifications, 3)
	assert.Equal(t, 3, inbox.Unread)

	assert.Equal(t, http.StatusForbidden, call(http.MethodPut, "/notifications/"+ids[0].String()+"/read", stranger, nil))
	assert.Equal(t, http.StatusOK, call(http.MethodPut, "/notifications/"+ids[0].String()+"/read", me, nil))

	inbox = application.InboxDTO{}
	assert.Equal(t, http.StatusOK, call(http.MethodGet, "/notifications?unread=true", me, &inbox))
	assert.Len(t, inbox.Notifications, 2)

	var updated struct {
		Updated int `json:"updated"`
	}
	assert.Equal(t, http.StatusOK, call(http.MethodPut, "/notifications/read-all", me, &updated))
	assert.Equal(t, 2, updated.Updated)
}
