package domain

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cristianortiz/harvestBid/internal/shared/apperr"
	"github.com/google/uuid"
)

type Role string

const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleFarmer, RoleBuyer:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidUser, s)
}

var (
	ErrUserNotFound = apperr.New(apperr.ErrNotFound, "user not found")
	ErrInvalidUser  = apperr.New(apperr.ErrValidation, "invalid user")
	ErrNotFarmer    = apperr.New(apperr.ErrAuthorization, "only farmers can do this")
)

// User is a registered farmer or buyer. Authentication lives outside this service, the id
// arrives already trusted.
type User struct {
	ID          uuid.UUID
	Role        Role
	Name        string
	Phone       string
	State       string
	District    string
	Address     string
	BankAccount string
	IFSCCode    string
	Interests   []string // crops a buyer wants to see first
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Profile struct {
	Name        string
	Phone       string
	State       string
	District    string
	Address     string
	BankAccount string
	IFSCCode    string
	Interests   []string
}

func NewUser(role Role, p Profile, now time.Time) (*User, error) {
	if role != RoleFarmer && role != RoleBuyer {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidUser, role)
	}
	u := &User{ID: uuid.New(), Role: role, CreatedAt: now}
	if err := u.ApplyProfile(p, now); err != nil {
		return nil, err
	}
	return u, nil
}

// ApplyProfile replaces the editable fields. Name and phone are mandatory.
func (u *User) ApplyProfile(p Profile, now time.Time) error {
	name := strings.TrimSpace(p.Name)
	phone := strings.TrimSpace(p.Phone)
	if name == "" || phone == "" {
		return fmt.Errorf("%w: name and phone are required", ErrInvalidUser)
	}
	u.Name, u.Phone = name, phone
	u.State = strings.TrimSpace(p.State)
	u.District = strings.TrimSpace(p.District)
	u.Address = strings.TrimSpace(p.Address)
	u.BankAccount = strings.TrimSpace(p.BankAccount)
	u.IFSCCode = strings.ToUpper(strings.TrimSpace(p.IFSCCode))
	u.Interests = normalizeInterests(p.Interests)
	u.UpdatedAt = now
	return nil
}

func normalizeInterests(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (u *User) IsFarmer() bool { return u.Role == RoleFarmer }

// ProfileCompletion weighs required fields at 70% and optional ones at 30%, rounded to the
// nearest whole percent.
func (u *User) ProfileCompletion() int {
	required := []string{u.Name, u.Phone, u.State, u.District}
	optional := []string{u.BankAccount, u.IFSCCode, u.Address}
	score := 70*filled(required)/float64(len(required)) + 30*filled(optional)/float64(len(optional))
	return int(math.Round(score))
}

func filled(fields []string) float64 {
	n := 0
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			n++
		}
	}
	return float64(n)
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Update(ctx context.Context, u *User) error
}
