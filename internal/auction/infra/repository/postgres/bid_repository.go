package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristianortiz/harvestBid/internal/auction/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BidRepository implements domain.BidRepository interface
type BidRepository struct {
	pool *pgxpool.Pool
}

// NewBidRepository creates new instance of BidRepository.
func NewBidRepository(pool *pgxpool.Pool) *BidRepository {
	return &BidRepository{pool: pool}
}

// Insert stores b only if the auction's highest amount is still expectedHighest. The auction
// row is locked for the length of the transaction, so two instances cannot both pass the check
// and a bid cannot land after a close.
func (r *BidRepository) Insert(ctx context.Context, b *domain.Bid, expectedHighest int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM auctions WHERE id = $1 FOR UPDATE`, b.AuctionID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrAuctionNotFound
			}
			return fmt.Errorf("lock auction %s: %w", b.AuctionID, err)
		}
		if status != string(domain.StatusActive) {
			return domain.ErrStaleBid
		}

		var highest int64
		err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(amount), 0) FROM bids WHERE auction_id = $1`, b.AuctionID).Scan(&highest)
		if err != nil {
			return fmt.Errorf("read highest bid: %w", err)
		}
		if highest != expectedHighest {
			return domain.ErrStaleBid
		}

		query := `
            INSERT INTO bids (id, auction_id, bidder_id, amount, timestamp)
            VALUES ($1, $2, $3, $4, $5)
        `
		if _, err := tx.Exec(ctx, query, b.ID, b.AuctionID, b.BidderID, b.Amount, b.Timestamp); err != nil {
			return fmt.Errorf("insert bid %s: %w", b.ID, err)
		}
		return nil
	})
}

func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bid, error) {
	query := `
        SELECT id, auction_id, bidder_id, amount, timestamp
        FROM bids
        WHERE id = $1
    `
	b, err := scanBid(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBidNotFound
		}
		return nil, err
	}
	return b, nil
}

// ListByAuction returns the bids of one auction, oldest first.
func (r *BidRepository) ListByAuction(ctx context.Context, auctionID uuid.UUID) ([]*domain.Bid, error) {
	query := `
        SELECT id, auction_id, bidder_id, amount, timestamp
        FROM bids
        WHERE auction_id = $1
        ORDER BY timestamp ASC, id ASC
    `
	return r.list(ctx, query, auctionID)
}

// ListByBidder returns every bid a user placed, newest first.
func (r *BidRepository) ListByBidder(ctx context.Context, bidderID uuid.UUID) ([]*domain.Bid, error) {
	query := `
        SELECT id, auction_id, bidder_id, amount, timestamp
        FROM bids
        WHERE bidder_id = $1
        ORDER BY timestamp DESC, id ASC
    `
	return r.list(ctx, query, bidderID)
}

func (r *BidRepository) list(ctx context.Context, query string, arg uuid.UUID) ([]*domain.Bid, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bids, nil
}

func (r *BidRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bids WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bid %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBidNotFound
	}
	return nil
}

func scanBid(row pgx.Row) (*domain.Bid, error) {
	b := &domain.Bid{}
	if err := row.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.Amount, &b.Timestamp); err != nil {
		return nil, err
	}
	b.Timestamp = b.Timestamp.UTC()
	return b, nil
}
