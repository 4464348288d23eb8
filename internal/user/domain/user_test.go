package domain

import (
	"testing"
	"time"

	"github.com/cristianortiz/harvestBid/internal/shared/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestProfileCompletion(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    int
	}{
		{"required only", Profile{Name: "Ravi", Phone: "98", State: "Punjab", District: "Ludhiana"}, 70},
		{"everything", Profile{Name: "Ravi", Phone: "98", State: "P", District: "L", Address: "a", BankAccount: "1", IFSCCode: "x"}, 100},
		{"name and phone", Profile{Name: "Ravi", Phone: "98"}, 35},
		{"one optional", Profile{Name: "Ravi", Phone: "98", State: "P", District: "L", BankAccount: "1"}, 80},
		{"two optional", Profile{Name: "Ravi", Phone: "98", Address: "a", BankAccount: "1"}, 55},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUser(RoleFarmer, tt.profile, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.ProfileCompletion())
		})
	}
}

func TestNewUserValidation(t *testing.T) {
	_, err := NewUser(RoleBuyer, Profile{Name: " ", Phone: "1"}, now)
	assert.ErrorIs(t, err, ErrInvalidUser)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = NewUser(Role("admin"), Profile{Name: "a", Phone: "1"}, now)
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestInterestsAreNormalized(t *testing.T) {
	u, err := NewUser(RoleBuyer, Profile{Name: "Asha", Phone: "1", IFSCCode: "sbin0001", Interests: []string{" Rice", "rice", "", "Wheat"}}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rice", "Wheat"}, u.Interests)
	assert.Equal(t, "SBIN0001", u.IFSCCode)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("Farmer")
	require.NoError(t, err)
	assert.Equal(t, RoleFarmer, r)

	_, err = ParseRole("trader")
	assert.Error(t, err)
}
