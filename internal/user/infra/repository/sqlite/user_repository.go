package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/cristianortiz/harvestBid/internal/user/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userModel struct {
	ID          uuid.UUID `gorm:"type:text;primaryKey"`
	Role        string    `gorm:"not null;index"`
	Name        string    `gorm:"not null"`
	Phone       string    `gorm:"not null"`
	State       string
	District    string
	Address     string
	BankAccount string
	IFSCCode    string    `gorm:"column:ifsc_code"`
	Interests   []string  `gorm:"serializer:json"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (userModel) TableName() string { return "users" }

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userModel{})
}

// UserRepository implements domain.UserRepository on the embedded store
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(toModel(u)).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:          m.ID,
		Role:        domain.Role(m.Role),
		Name:        m.Name,
		Phone:       m.Phone,
		State:       m.State,
		District:    m.District,
		Address:     m.Address,
		BankAccount: m.BankAccount,
		IFSCCode:    m.IFSCCode,
		Interests:   m.Interests,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	res := r.db.WithContext(ctx).Model(&userModel{ID: u.ID}).Select("*").Omit("id", "created_at", "role").Updates(toModel(u))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func toModel(u *domain.User) *userModel {
	interests := u.Interests
	if interests == nil {
		interests = []string{}
	}
	return &userModel{
		ID:          u.ID,
		Role:        string(u.Role),
		Name:        u.Name,
		Phone:       u.Phone,
		State:       u.State,
		District:    u.District,
		Address:     u.Address,
		BankAccount: u.BankAccount,
		IFSCCode:    u.IFSCCode,
		Interests:   interests,
		CreatedAt:   u.CreatedAt.UTC(),
		UpdatedAt:   u.UpdatedAt.UTC(),
	}
}
