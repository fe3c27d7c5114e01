package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/selecta-golang/internal/database"
	"github.com/01moynul/selecta-golang/internal/models"
)

type ReviewRepo struct {
	db *database.DB
}

func NewReviewRepo(db *database.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// Create stores a review. An order can be reviewed once; a second review
// returns ErrConflict.
func (r *ReviewRepo) Create(ctx context.Context, rv *models.Review) error {
	d := r.db.Dialect
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			database.Rebind(d, "SELECT 1 FROM reviews WHERE order_id = ?"), rv.OrderID).Scan(&exists)
		if err == nil {
			return ErrConflict
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check review: %w", err)
		}

		_, err = tx.ExecContext(ctx, database.Rebind(d, `
			INSERT INTO reviews (id, order_id, customer_id, rating, comment, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`),
			rv.ID, rv.OrderID, rv.CustomerID, rv.Rating, rv.Comment, utc(rv.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert review: %w", err)
		}
		return nil
	})
}

// ReviewedOrderIDs returns the set of order ids that have a review.
func (r *ReviewRepo) ReviewedOrderIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT order_id FROM reviews")
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}
