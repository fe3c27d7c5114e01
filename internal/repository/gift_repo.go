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

type GiftRepo struct {
	db *database.DB
}

func NewGiftRepo(db *database.DB) *GiftRepo {
	return &GiftRepo{db: db}
}

const giftColumns = `id, order_id, recipient_email, recipient_name, sender_name, basket_name,
	personal_note, created_at, shipping_completed, reminder_sent_at`

// ListAwaitingReminder returns gifts created before cutoff that have neither
// shipping details nor a reminder yet. NULL text columns come back empty, so
// callers should validate each row before using it.
func (r *GiftRepo) ListAwaitingReminder(ctx context.Context, cutoff time.Time) ([]models.PendingGift, error) {
	query := r.db.Rebind(`
		SELECT ` + giftColumns + `
		FROM pending_gifts
		WHERE shipping_completed = ? AND reminder_sent_at IS NULL AND created_at < ?
		ORDER BY created_at`)

	rows, err := r.db.QueryContext(ctx, query, false, utc(cutoff))
	if err != nil {
		return nil, fmt.Errorf("query pending gifts: %w", err)
	}
	defer rows.Close()

	var gifts []models.PendingGift
	for rows.Next() {
		g, err := scanGift(rows)
		if err != nil {
			return nil, err
		}
		gifts = append(gifts, *g)
	}
	return gifts, rows.Err()
}

// MarkReminderSent stamps a gift's reminder time. A gift that was already
// stamped is left alone and reported as ErrNotFound.
func (r *GiftRepo) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	query := r.db.Rebind("UPDATE pending_gifts SET reminder_sent_at = ? WHERE id = ? AND reminder_sent_at IS NULL")
	res, err := r.db.ExecContext(ctx, query, utc(at), id)
	if err != nil {
		return fmt.Errorf("mark gift reminder: %w", err)
	}
	return expectOne(res)
}

func (r *GiftRepo) Get(ctx context.Context, id string) (*models.PendingGift, error) {
	query := r.db.Rebind("SELECT " + giftColumns + " FROM pending_gifts WHERE id = ?")
	g, err := scanGift(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return g, err
}

// CompleteShipping records the recipient's address and completes the gift's
// order. A gift that already has shipping details returns ErrConflict.
func (r *GiftRepo) CompleteShipping(ctx context.Context, id string, s models.GiftShipping, at time.Time) error {
	d := r.db.Dialect
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var orderID string
		var done bool
		err := tx.QueryRowContext(ctx,
			database.Rebind(d, "SELECT order_id, shipping_completed FROM pending_gifts WHERE id = ?"), id).
			Scan(&orderID, &done)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load pending gift: %w", err)
		}
		if done {
			return ErrConflict
		}

		res, err := tx.ExecContext(ctx, database.Rebind(d, `
			UPDATE pending_gifts
			SET shipping_completed = ?, shipping_name = ?, shipping_address = ?,
				shipping_city = ?, shipping_postal_code = ?, shipping_phone = ?
			WHERE id = ? AND shipping_completed = ?`),
			true, s.FullName, s.AddressLine, s.City, s.PostalCode, nullString(s.Phone), id, false)
		if err != nil {
			return fmt.Errorf("update pending gift: %w", err)
		}
		if err := expectOne(res); err != nil {
			return ErrConflict
		}

		_, err = tx.ExecContext(ctx,
			database.Rebind(d, "UPDATE orders SET status = ?, completed_at = ? WHERE id = ?"),
			string(models.OrderCompleted), utc(at), orderID)
		if err != nil {
			return fmt.Errorf("complete gift order: %w", err)
		}
		return nil
	})
}

func scanGift(row rowScanner) (*models.PendingGift, error) {
	var g models.PendingGift
	var email, recipient, sender, basket, note sql.NullString
	var reminded sql.NullTime
	err := row.Scan(&g.ID, &g.OrderID, &email, &recipient, &sender, &basket,
		&note, &g.CreatedAt, &g.ShippingCompleted, &reminded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan pending gift: %w", err)
	}
	g.RecipientEmail = email.String
	g.RecipientName = recipient.String
	g.SenderName = sender.String
	g.BasketName = basket.String
	g.PersonalNote = stringPtr(note)
	g.CreatedAt = g.CreatedAt.UTC()
	g.ReminderSentAt = timePtr(reminded)
	return &g, nil
}
