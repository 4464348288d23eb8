package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristianortiz/harvestBid/internal/user/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository implements domain.UserRepository on PostgreSQL.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
        INSERT INTO users (id, role, name, phone, state, district, address, bank_account, ifsc_code, interests, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
	_, err := r.db.Exec(ctx, query,
		u.ID, string(u.Role), u.Name, u.Phone, u.State, u.District, u.Address,
		u.BankAccount, u.IFSCCode, interestsOf(u), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user %s: %w", u.ID, err)
	}
	return nil
}

// GetByID returns domain.ErrUserNotFound when no row matches.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
        SELECT id, role, name, phone, state, district, address, bank_account, ifsc_code, interests, created_at, updated_at
        FROM users
        WHERE id = $1
    `
	u := &domain.User{}
	var role string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &role, &u.Name, &u.Phone, &u.State, &u.District, &u.Address,
		&u.BankAccount, &u.IFSCCode, &u.Interests, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	u.CreatedAt, u.UpdatedAt = u.CreatedAt.UTC(), u.UpdatedAt.UTC()
	return u, nil
}

// Update rewrites the profile columns, the role is fixed at registration.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
        UPDATE users
        SET name = $2, phone = $3, state = $4, district = $5, address = $6,
            bank_account = $7, ifsc_code = $8, interests = $9, updated_at = $10
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query,
		u.ID, u.Name, u.Phone, u.State, u.District, u.Address,
		u.BankAccount, u.IFSCCode, interestsOf(u), u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user %s: %w", u.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// interestsOf keeps the jsonb column an array even for users without interests.
func interestsOf(u *domain.User) []string {
	if u.Interests == nil {
		return []string{}
	}
	return u.Interests
}
