package reminders

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/01moynul/selecta-golang/internal/email"
	"github.com/01moynul/selecta-golang/internal/logger"
	"github.com/01moynul/selecta-golang/internal/models"
)

const (
	// ReviewReminderDelay is how long after completion the first reminder goes out.
	ReviewReminderDelay = 24 * time.Hour
	// MaxReviewReminders is the terminal reminder count.
	MaxReviewReminders = 3

	defaultBasketName = "tu cesta"
)

type OrderStore interface {
	ListCompletedBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	ListItems(ctx context.Context, orderID string) ([]models.OrderItem, error)
}

type ReviewStore interface {
	ReviewedOrderIDs(ctx context.Context) (map[string]struct{}, error)
}

type ReminderStore interface {
	Get(ctx context.Context, orderID string) (*models.ReviewReminder, error)
	Upsert(ctx context.Context, rem models.ReviewReminder) error
}

type CustomerStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

type TokenMinter interface {
	Mint(ctx context.Context, userID, redirectTo string) (string, error)
}

// Eligible reports whether an order with reminder state rem may be reminded at now.
// A nil rem means no reminder was ever sent.
func Eligible(rem *models.ReviewReminder, now time.Time) bool {
	if rem == nil || rem.ReminderCount == 0 {
		return true
	}
	if rem.ReminderCount >= MaxReviewReminders {
		return false
	}
	return rem.NextSendAt != nil && !rem.NextSendAt.After(now)
}

// NextSendAt returns when the following reminder is due after the
// countAfterSend-th one went out at now: three days after the first, four
// after the second, never after the third.
func NextSendAt(countAfterSend int, now time.Time) *time.Time {
	var wait time.Duration
	switch countAfterSend {
	case 1:
		wait = 3 * 24 * time.Hour
	case 2:
		wait = 4 * 24 * time.Hour
	default:
		return nil
	}
	t := now.Add(wait)
	return &t
}

// ReviewRedirect is the review page path a login link lands on.
func ReviewRedirect(orderID, basketName string) string {
	return "/valoraciones?pedido=" + url.QueryEscape(orderID) + "&cesta=" + slug.Make(basketName)
}

// ReviewReminderJob asks customers to review completed orders, at most
// MaxReviewReminders times per order.
type ReviewReminderJob struct {
	Orders    OrderStore
	Reviews   ReviewStore
	Reminders ReminderStore
	Customers CustomerStore
	Tokens    TokenMinter
	Mailer    email.Mailer
	SiteURL   string
	Now       func() time.Time
	Logger    *zap.Logger
}

func (j *ReviewReminderJob) Name() string { return "review-reminders" }

// Run sends every due reminder. Per-order failures are counted and skipped;
// an error is returned only when the candidate queries fail.
func (j *ReviewReminderJob) Run(ctx context.Context) (Result, error) {
	log := logger.OrNop(j.Logger).With(zap.String("job", j.Name()))
	now := nowOr(j.Now)

	orders, err := j.Orders.ListCompletedBefore(ctx, now.Add(-ReviewReminderDelay))
	if err != nil {
		return Result{}, fmt.Errorf("list completed orders: %w", err)
	}
	reviewed, err := j.Reviews.ReviewedOrderIDs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list reviewed orders: %w", err)
	}

	var res Result
	for _, o := range orders {
		if _, ok := reviewed[o.ID]; ok {
			continue
		}

		sent, err := j.process(ctx, o, now)
		if err != nil {
			res.Errors++
			log.Warn("review reminder failed", zap.String("order_id", o.ID), zap.Error(err))
			continue
		}
		if sent {
			res.Sent++
		}
	}

	log.Info("review reminders done",
		zap.Int("candidates", len(orders)),
		zap.Int("sent", res.Sent),
		zap.Int("errors", res.Errors))
	return res, nil
}

func (j *ReviewReminderJob) process(ctx context.Context, o models.Order, now time.Time) (bool, error) {
	if o.ID == "" || o.CustomerID == "" {
		return false, errors.New("order row missing id or customer")
	}

	rem, err := j.Reminders.Get(ctx, o.ID)
	if err != nil {
		return false, fmt.Errorf("load reminder: %w", err)
	}
	if !Eligible(rem, now) {
		return false, nil
	}
	count := 0
	if rem != nil {
		count = rem.ReminderCount
	}

	customer, err := j.Customers.GetByID(ctx, o.CustomerID)
	if err != nil {
		return false, fmt.Errorf("load customer: %w", err)
	}
	if customer.Email == "" {
		return false, errors.New("customer has no email")
	}

	basket, err := j.basketName(ctx, o.ID)
	if err != nil {
		return false, err
	}

	token, err := j.Tokens.Mint(ctx, customer.ID, ReviewRedirect(o.ID, basket))
	if err != nil {
		return false, fmt.Errorf("mint login token: %w", err)
	}

	msg, err := email.ComposeReviewReminder(email.ReviewReminder{
		CustomerEmail: customer.Email,
		CustomerName:  customer.FullName,
		BasketName:    basket,
		Link:          j.SiteURL + "/auth/magic?token=" + url.QueryEscape(token),
		Attempt:       count + 1,
	})
	if err != nil {
		return false, err
	}
	if err := j.Mailer.Send(ctx, msg); err != nil {
		return false, fmt.Errorf("send: %w", err)
	}

	next := count + 1
	err = j.Reminders.Upsert(ctx, models.ReviewReminder{
		OrderID:       o.ID,
		CustomerID:    o.CustomerID,
		ReminderCount: next,
		LastSentAt:    now,
		NextSendAt:    NextSendAt(next, now),
	})
	if err != nil {
		return false, fmt.Errorf("record reminder: %w", err)
	}
	return true, nil
}

// basketName is the first line item's basket, the order's representative name.
func (j *ReviewReminderJob) basketName(ctx context.Context, orderID string) (string, error) {
	items, err := j.Orders.ListItems(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("load order items: %w", err)
	}
	if len(items) == 0 || items[0].BasketName == "" {
		return defaultBasketName, nil
	}
	return items[0].BasketName, nil
}
