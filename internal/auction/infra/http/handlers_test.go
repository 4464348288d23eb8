package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cristianortiz/harvestBid/internal/auction/application"
	"github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/cristianortiz/harvestBid/internal/auction/infra/repository/sqlite"
	"github.com/cristianortiz/harvestBid/internal/shared/clock"
	"github.com/cristianortiz/harvestBid/internal/shared/db/dbtest"
	"github.com/cristianortiz/harvestBid/internal/shared/httpserver"
	userdomain "github.com/cristianortiz/harvestBid/internal/user/domain"
	usersqlite "github.com/cristianortiz/harvestBid/internal/user/infra/repository/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	server *httpserver.Server
	clock  *clock.Fixed
	farmer uuid.UUID
	buyer  uuid.UUID
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	gdb := dbtest.MustOpen(t, sqlite.AutoMigrate, usersqlite.AutoMigrate)
	fc := clock.NewFixed(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	lc := domain.NewLifecycle(fc, domain.PolicyAutoSell)
	users := usersqlite.NewUserRepository(gdb)

	f := &apiFixture{clock: fc}
	for role, dst := range map[userdomain.Role]*uuid.UUID{userdomain.RoleFarmer: &f.farmer, userdomain.RoleBuyer: &f.buyer} {
		u, err := userdomain.NewUser(role, userdomain.Profile{Name: string(role), Phone: "98"}, fc.Now())
		require.NoError(t, err)
		require.NoError(t, users.Create(context.Background(), u))
		*dst = u.ID
	}

	svc := application.NewAuctionService(application.Deps{
		Auctions:  sqlite.NewAuctionRepository(gdb),
		Bids:      sqlite.NewBidRepository(gdb),
		Users:     users,
		Lifecycle: lc,
		Validator: domain.NewBidValidator(lc),
	})
	f.server = httpserver.NewServer(nil, NewAuctionHandler(svc))
	return f
}

func (f *apiFixture) call(t *testing.T, method, path string, user uuid.UUID, body string, out any) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != uuid.Nil {
		req.Header.Set(httpserver.UserHeader, user.String())
	}
	resp, err := f.server.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestAuctionAPIFlow(t *testing.T) {
	f := newAPI(t)

	var created application.AuctionViewDTO
	code := f.call(t, http.MethodPost, "/auctions", f.farmer,
		`{"item_name":"Basmati rice","quantity":100,"minimum_bid":14000,"duration_hours":24}`, &created)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, int64(14700), created.MinimumNextBid)
	id := created.Auction.ID.String()

	var rejected application.PlaceBidResultDTO
	code = f.call(t, http.MethodPost, "/bids", f.buyer, `{"auction_id":"`+id+`","amount":14000}`, &rejected)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NotNil(t, rejected.Rejection)
	assert.Equal(t, "below_minimum", rejected.Rejection.Reason)

	var accepted application.PlaceBidResultDTO
	code = f.call(t, http.MethodPost, "/bids", f.buyer, `{"auction_id":"`+id+`","amount":14700}`, &accepted)
	assert.Equal(t, http.StatusCreated, code)
	assert.True(t, accepted.Accepted)

	var bids application.AuctionBidsDTO
	code = f.call(t, http.MethodGet, "/auctions/"+id+"/bids", uuid.Nil, "", &bids)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, bids.Bids, 1)

	code = f.call(t, http.MethodDelete, "/auctions/"+id, f.farmer, "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code, "auction with bids cannot be deleted")

	f.clock.Advance(25 * time.Hour)
	var view application.AuctionViewDTO
	code = f.call(t, http.MethodGet, "/auctions/"+id, uuid.Nil, "", &view)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "sold", view.Auction.Status)
}

func TestAuctionAPIErrors(t *testing.T) {
	f := newAPI(t)

	code := f.call(t, http.MethodPost, "/auctions", uuid.Nil, `{"item_name":"x","quantity":1,"minimum_bid":1,"duration_hours":1}`, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code = f.call(t, http.MethodPost, "/auctions", f.buyer, `{"item_name":"x","quantity":1,"minimum_bid":1,"duration_hours":1}`, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code = f.call(t, http.MethodPost, "/auctions", f.farmer, `{"item_name":"","quantity":1,"minimum_bid":1,"duration_hours":1}`, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code = f.call(t, http.MethodGet, "/auctions/not-a-uuid", uuid.Nil, "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code = f.call(t, http.MethodGet, "/auctions/"+uuid.NewString(), uuid.Nil, "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code = f.call(t, http.MethodPost, "/auctions/"+uuid.NewString()+"/result", f.farmer, `{"action":"accept"}`, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAuctionAPIListMine(t *testing.T) {
	f := newAPI(t)
	code := f.call(t, http.MethodPost, "/auctions", f.farmer,
		`{"item_name":"Turmeric","quantity":5,"minimum_bid":3000,"duration_hours":10}`, nil)
	require.Equal(t, http.StatusCreated, code)

	var out struct {
		Auctions []*application.AuctionViewDTO `json:"auctions"`
		Count    int                           `json:"count"`
	}
	code = f.call(t, http.MethodGet, "/auctions?mine=true", f.buyer, "", &out)
	assert.Equal(t, http.StatusOK, code)
	assert.Zero(t, out.Count)

	code = f.call(t, http.MethodGet, "/auctions?crop=turm", uuid.Nil, "", &out)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, out.Count)

	code = f.call(t, http.MethodGet, "/auctions?sortBy=cheapest", uuid.Nil, "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
