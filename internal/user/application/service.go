package application

import (
	"context"
	"fmt"
	"time"

	"github.com/cristianortiz/harvestBid/internal/shared/clock"
	"github.com/cristianortiz/harvestBid/internal/shared/logger"
	"github.com/cristianortiz/harvestBid/internal/user/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

type ProfileDTO struct {
	Name        string   `json:"name" validate:"required,max=120"`
	Phone       string   `json:"phone" validate:"required,max=20"`
	State       string   `json:"state" validate:"max=80"`
	District    string   `json:"district" validate:"max=80"`
	Address     string   `json:"address" validate:"max=300"`
	BankAccount string   `json:"bank_account" validate:"omitempty,numeric,min=6,max=20"`
	IFSCCode    string   `json:"ifsc_code" validate:"omitempty,len=11"`
	Interests   []string `json:"interests" validate:"max=20,dive,max=60"`
}

type RegisterUserDTO struct {
	Role string `json:"role" validate:"required,oneof=farmer buyer"`
	ProfileDTO
}

type UserDTO struct {
	ID                uuid.UUID `json:"id"`
	Role              string    `json:"role"`
	Name              string    `json:"name"`
	Phone             string    `json:"phone"`
	State             string    `json:"state,omitempty"`
	District          string    `json:"district,omitempty"`
	Address           string    `json:"address,omitempty"`
	BankAccount       string    `json:"bank_account,omitempty"`
	IFSCCode          string    `json:"ifsc_code,omitempty"`
	Interests         []string  `json:"interests"`
	ProfileCompletion int       `json:"profile_completion"`
	CreatedAt         time.Time `json:"created_at"`
}

func ToUserDTO(u *domain.User) *UserDTO {
	return &UserDTO{
		ID:                u.ID,
		Role:              string(u.Role),
		Name:              u.Name,
		Phone:             u.Phone,
		State:             u.State,
		District:          u.District,
		Address:           u.Address,
		BankAccount:       u.BankAccount,
		IFSCCode:          u.IFSCCode,
		Interests:         u.Interests,
		ProfileCompletion: u.ProfileCompletion(),
		CreatedAt:         u.CreatedAt,
	}
}

func (p ProfileDTO) toDomain() domain.Profile {
	return domain.Profile{
		Name:        p.Name,
		Phone:       p.Phone,
		State:       p.State,
		District:    p.District,
		Address:     p.Address,
		BankAccount: p.BankAccount,
		IFSCCode:    p.IFSCCode,
		Interests:   p.Interests,
	}
}

// Service manages farmer and buyer profiles.
type Service struct {
	repo  domain.UserRepository
	clock clock.Clock
}

func NewService(repo domain.UserRepository, c clock.Clock) *Service {
	return &Service{repo: repo, clock: c}
}

func (s *Service) Register(ctx context.Context, cmd RegisterUserDTO) (*UserDTO, error) {
	role, err := domain.ParseRole(cmd.Role)
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	u, err := domain.NewUser(role, cmd.ProfileDTO.toDomain(), s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("register user: save: %w", err)
	}
	log.Info("user registered", zap.String("userID", u.ID.String()), zap.String("role", string(u.Role)))
	return ToUserDTO(u), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return ToUserDTO(u), nil
}

// GetByID exposes the domain user to other bounded contexts.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, p ProfileDTO) (*UserDTO, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := u.ApplyProfile(p.toDomain(), s.clock.Now()); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update profile: save: %w", err)
	}
	return ToUserDTO(u), nil
}
