package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/01moynul/selecta-golang/internal/database"
	"github.com/01moynul/selecta-golang/internal/models"
)

type OrderRepo struct {
	db *database.DB
}

func NewOrderRepo(db *database.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

const orderColumns = "id, customer_id, status, total, is_gift, created_at, completed_at"

// Create writes an order, its items and, for gift orders, the pending gift
// in a single transaction.
func (r *OrderRepo) Create(ctx context.Context, o *models.Order, items []models.OrderItem, gift *models.PendingGift) error {
	d := r.db.Dialect
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, database.Rebind(d, `
			INSERT INTO orders (id, customer_id, status, total, is_gift, created_at, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`),
			o.ID, o.CustomerID, string(o.Status), o.Total, o.IsGift, utc(o.CreatedAt), nullTime(o.CompletedAt))
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		itemQuery := database.Rebind(d, `
			INSERT INTO order_items (order_id, product_id, basket_name, quantity, unit_price, is_gift)
			VALUES (?, ?, ?, ?, ?, ?)`)
		for _, it := range items {
			if _, err := tx.ExecContext(ctx, itemQuery,
				o.ID, it.ProductID, it.BasketName, it.Quantity, it.UnitPrice, it.IsGift); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		if gift == nil {
			return nil
		}
		_, err = tx.ExecContext(ctx, database.Rebind(d, `
			INSERT INTO pending_gifts
				(id, order_id, recipient_email, recipient_name, sender_name, basket_name,
				 personal_note, created_at, shipping_completed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			gift.ID, o.ID, gift.RecipientEmail, gift.RecipientName, gift.SenderName, gift.BasketName,
			nullString(gift.PersonalNote), utc(gift.CreatedAt), false)
		if err != nil {
			return fmt.Errorf("insert pending gift: %w", err)
		}
		return nil
	})
}

func (r *OrderRepo) Get(ctx context.Context, id string) (*models.Order, error) {
	query := r.db.Rebind("SELECT " + orderColumns + " FROM orders WHERE id = ?")
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// ListByCustomer returns a customer's orders, newest first.
func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	query := r.db.Rebind("SELECT " + orderColumns + " FROM orders WHERE customer_id = ? ORDER BY created_at DESC")
	return r.list(ctx, query, customerID)
}

// ListCompletedBefore returns completed orders whose completion time is at
// or before cutoff, oldest first.
func (r *OrderRepo) ListCompletedBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	query := r.db.Rebind(`
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = ? AND completed_at IS NOT NULL AND completed_at <= ?
		ORDER BY completed_at`)
	return r.list(ctx, query, string(models.OrderCompleted), utc(cutoff))
}

// ListItems returns an order's items in insertion order.
func (r *OrderRepo) ListItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	query := r.db.Rebind(`
		SELECT id, order_id, product_id, basket_name, quantity, unit_price, is_gift
		FROM order_items
		WHERE order_id = ?
		ORDER BY id`)

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.BasketName,
			&it.Quantity, &it.UnitPrice, &it.IsGift); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *OrderRepo) list(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var status string
	var completed sql.NullTime
	if err := row.Scan(&o.ID, &o.CustomerID, &status, &o.Total, &o.IsGift, &o.CreatedAt, &completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	o.Status = models.OrderStatus(status)
	o.CreatedAt = o.CreatedAt.UTC()
	o.CompletedAt = timePtr(completed)
	return &o, nil
}
