package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const auctionColumns = `id, owner_id, item_name, quantity, unit, minimum_bid, description, state, district,
        start_time, end_time, status, winning_bid, winning_bidder_id, decided_at, created_at, updated_at`

// AuctionRepository implements domain.AuctionRepository interface
type AuctionRepository struct {
	pool *pgxpool.Pool
}

// NewAuctionRepository creates a new instance of AuctionRepository
func NewAuctionRepository(pool *pgxpool.Pool) *AuctionRepository {
	return &AuctionRepository{pool: pool}
}

func (r *AuctionRepository) Create(ctx context.Context, a *domain.Auction) error {
	query := `
        INSERT INTO auctions (` + auctionColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
    `
	_, err := r.pool.Exec(ctx, query,
		a.ID,
		a.OwnerID,
		a.ItemName,
		a.Quantity,
		a.Unit,
		a.MinimumBid,
		a.Description,
		a.State,
		a.District,
		a.StartTime,
		a.EndTime,
		string(a.Status),
		a.WinningBid,
		a.WinningBidderID,
		a.DecidedAt,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert auction %s: %w", a.ID, err)
	}
	return nil
}

func (r *AuctionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`
	a, err := scanAuction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return a, nil
}

// List returns auctions matching f, newest first. Zero fields in f do not filter.
func (r *AuctionRepository) List(ctx context.Context, f domain.AuctionFilter) ([]*domain.Auction, error) {
	query := `
        SELECT ` + auctionColumns + `
        FROM auctions
        WHERE ($1 = '' OR status = $1)
          AND ($2::uuid IS NULL OR owner_id = $2)
        ORDER BY created_at DESC
    `
	var owner *uuid.UUID
	if f.OwnerID != uuid.Nil {
		owner = &f.OwnerID
	}
	rows, err := r.pool.Query(ctx, query, string(f.Status), owner)
	if err != nil {
		return nil, err
	}
	return collectAuctions(rows)
}

// ListActiveEndingBefore returns the auctions still stored as active whose end time is not after t.
func (r *AuctionRepository) ListActiveEndingBefore(ctx context.Context, t time.Time) ([]*domain.Auction, error) {
	query := `
        SELECT ` + auctionColumns + `
        FROM auctions
        WHERE status = $1 AND end_time <= $2
        ORDER BY end_time ASC
    `
	rows, err := r.pool.Query(ctx, query, string(domain.StatusActive), t)
	if err != nil {
		return nil, err
	}
	return collectAuctions(rows)
}

// Update overwrites the mutable columns only while the stored status still equals expected.
func (r *AuctionRepository) Update(ctx context.Context, a *domain.Auction, expected domain.AuctionStatus) error {
	query := `
        UPDATE auctions
        SET item_name = $3, quantity = $4, unit = $5, minimum_bid = $6, description = $7,
            state = $8, district = $9, start_time = $10, end_time = $11, status = $12,
            winning_bid = $13, winning_bidder_id = $14, decided_at = $15, updated_at = $16
        WHERE id = $1 AND status = $2
    `
	tag, err := r.pool.Exec(ctx, query,
		a.ID,
		string(expected),
		a.ItemName,
		a.Quantity,
		a.Unit,
		a.MinimumBid,
		a.Description,
		a.State,
		a.District,
		a.StartTime,
		a.EndTime,
		string(a.Status),
		a.WinningBid,
		a.WinningBidderID,
		a.DecidedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update auction %s: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, a.ID); err != nil {
			return err
		}
		return domain.ErrStaleAuction
	}
	return nil
}

func (r *AuctionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM auctions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete auction %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAuctionNotFound
	}
	return nil
}

func scanAuction(row pgx.Row) (*domain.Auction, error) {
	a := &domain.Auction{}
	var status string
	err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.ItemName,
		&a.Quantity,
		&a.Unit,
		&a.MinimumBid,
		&a.Description,
		&a.State,
		&a.District,
		&a.StartTime,
		&a.EndTime,
		&status,
		&a.WinningBid,      // NULL until sold or completed
		&a.WinningBidderID, // NULL until sold or completed
		&a.DecidedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = domain.AuctionStatus(status)
	a.StartTime, a.EndTime = a.StartTime.UTC(), a.EndTime.UTC()
	a.CreatedAt, a.UpdatedAt = a.CreatedAt.UTC(), a.UpdatedAt.UTC()
	if a.DecidedAt != nil {
		t := a.DecidedAt.UTC()
		a.DecidedAt = &t
	}
	return a, nil
}

func collectAuctions(rows pgx.Rows) ([]*domain.Auction, error) {
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		auctions = append(auctions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return auctions, nil
}
