package application

import (
	"context"
	"testing"
	"time"

	"github.com/cristianortiz/harvestBid/internal/shared/clock"
	"github.com/cristianortiz/harvestBid/internal/shared/db/dbtest"
	"github.com/cristianortiz/harvestBid/internal/user/domain"
	"github.com/cristianortiz/harvestBid/internal/user/infra/repository/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *clock.Fixed) {
	gdb := dbtest.MustOpen(t, sqlite.AutoMigrate)
	fc := clock.NewFixed(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	return NewService(sqlite.NewUserRepository(gdb), fc), fc
}

func TestRegisterAndGet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	created, err := svc.Register(ctx, RegisterUserDTO{
		Role: "buyer",
		ProfileDTO: ProfileDTO{
			Name:      "Meera",
			Phone:     "9876543210",
			State:     "Maharashtra",
			District:  "Nashik",
			Interests: []string{"Onion", "Grapes"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 70, created.ProfileCompletion)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meera", got.Name)
	assert.Equal(t, "buyer", got.Role)
	assert.Equal(t, []string{"Onion", "Grapes"}, got.Interests)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Register(context.Background(), RegisterUserDTO{Role: "broker", ProfileDTO: ProfileDTO{Name: "x", Phone: "1"}})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	created, err := svc.Register(ctx, RegisterUserDTO{Role: "farmer", ProfileDTO: ProfileDTO{Name: "Gurpreet", Phone: "98"}})
	require.NoError(t, err)
	assert.Equal(t, 35, created.ProfileCompletion)

	updated, err := svc.UpdateProfile(ctx, created.ID, ProfileDTO{
		Name: "Gurpreet Singh", Phone: "98", State: "Punjab", District: "Bathinda",
		Address: "Village Road", BankAccount: "12345678", IFSCCode: "PUNB0123400",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, updated.ProfileCompletion)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gurpreet Singh", got.Name)
	assert.Equal(t, "farmer", got.Role)
	assert.Equal(t, 100, got.ProfileCompletion)

	_, err = svc.UpdateProfile(ctx, created.ID, ProfileDTO{Name: "", Phone: "98"})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}
