package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/selecta-golang/internal/database"
	"github.com/01moynul/selecta-golang/internal/models"
)

type ReviewReminderRepo struct {
	db *database.DB
}

func NewReviewReminderRepo(db *database.DB) *ReviewReminderRepo {
	return &ReviewReminderRepo{db: db}
}

// Get returns the reminder row for an order, or nil if none was ever sent.
func (r *ReviewReminderRepo) Get(ctx context.Context, orderID string) (*models.ReviewReminder, error) {
	query := r.db.Rebind(`
		SELECT order_id, customer_id, reminder_count, last_sent_at, next_send_at
		FROM review_reminders
		WHERE order_id = ?`)

	var rem models.ReviewReminder
	var next sql.NullTime
	err := r.db.QueryRowContext(ctx, query, orderID).
		Scan(&rem.OrderID, &rem.CustomerID, &rem.ReminderCount, &rem.LastSentAt, &next)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan review reminder: %w", err)
	}
	rem.LastSentAt = rem.LastSentAt.UTC()
	rem.NextSendAt = timePtr(next)
	return &rem, nil
}

// Upsert inserts or updates the reminder row keyed by order id. The stored
// reminder_count never decreases.
func (r *ReviewReminderRepo) Upsert(ctx context.Context, rem models.ReviewReminder) error {
	var query string
	switch r.db.Dialect {
	case database.MySQL:
		query = `
			INSERT INTO review_reminders (order_id, customer_id, reminder_count, last_sent_at, next_send_at)
			VALUES (?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				reminder_count = GREATEST(reminder_count, VALUES(reminder_count)),
				last_sent_at = VALUES(last_sent_at),
				next_send_at = VALUES(next_send_at)`
	case database.Postgres:
		query = `
			INSERT INTO review_reminders (order_id, customer_id, reminder_count, last_sent_at, next_send_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (order_id) DO UPDATE SET
				reminder_count = GREATEST(review_reminders.reminder_count, EXCLUDED.reminder_count),
				last_sent_at = EXCLUDED.last_sent_at,
				next_send_at = EXCLUDED.next_send_at`
	default:
		query = `
			INSERT INTO review_reminders (order_id, customer_id, reminder_count, last_sent_at, next_send_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (order_id) DO UPDATE SET
				reminder_count = MAX(review_reminders.reminder_count, excluded.reminder_count),
				last_sent_at = excluded.last_sent_at,
				next_send_at = excluded.next_send_at`
	}

	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		rem.OrderID, rem.CustomerID, rem.ReminderCount, utc(rem.LastSentAt), nullTime(rem.NextSendAt))
	if err != nil {
		return fmt.Errorf("upsert review reminder: %w", err)
	}
	return nil
}
