package reminders

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/01moynul/selecta-golang/internal/email"
	"github.com/01moynul/selecta-golang/internal/logger"
	"github.com/01moynul/selecta-golang/internal/models"
)

// GiftReminderThreshold is how long a gift may wait for a shipping address
// before its recipient is reminded.
const GiftReminderThreshold = 72 * time.Hour

type GiftStore interface {
	ListAwaitingReminder(ctx context.Context, cutoff time.Time) ([]models.PendingGift, error)
	MarkReminderSent(ctx context.Context, id string, at time.Time) error
}

// GiftReminderJob sends each unclaimed gift's recipient exactly one reminder.
type GiftReminderJob struct {
	Gifts   GiftStore
	Mailer  email.Mailer
	SiteURL string
	Now     func() time.Time
	Logger  *zap.Logger
}

func (j *GiftReminderJob) Name() string { return "gift-reminders" }

// Run processes every gift older than the threshold that has neither
// shipping details nor a reminder. Row failures are counted and skipped; an
// error is returned only when the candidate query fails.
func (j *GiftReminderJob) Run(ctx context.Context) (Result, error) {
	log := logger.OrNop(j.Logger).With(zap.String("job", j.Name()))
	now := nowOr(j.Now)

	gifts, err := j.Gifts.ListAwaitingReminder(ctx, now.Add(-GiftReminderThreshold))
	if err != nil {
		return Result{}, fmt.Errorf("list pending gifts: %w", err)
	}

	var res Result
	for _, g := range gifts {
		if err := j.remind(ctx, g, now); err != nil {
			res.Errors++
			log.Warn("gift reminder failed", zap.String("gift_id", g.ID), zap.Error(err))
			continue
		}
		res.Sent++
	}

	log.Info("gift reminders done",
		zap.Int("candidates", len(gifts)),
		zap.Int("sent", res.Sent),
		zap.Int("errors", res.Errors))
	return res, nil
}

func (j *GiftReminderJob) remind(ctx context.Context, g models.PendingGift, now time.Time) error {
	if err := models.Validate(g); err != nil {
		return fmt.Errorf("invalid gift row: %w", err)
	}

	data := email.GiftReminder{
		RecipientEmail: g.RecipientEmail,
		RecipientName:  g.RecipientName,
		SenderName:     g.SenderName,
		BasketName:     g.BasketName,
		Link:           j.SiteURL + "/regalo/" + g.ID,
	}
	if g.PersonalNote != nil {
		data.PersonalNote = *g.PersonalNote
	}

	msg, err := email.ComposeGiftReminder(data)
	if err != nil {
		return err
	}
	if err := j.Mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if err := j.Gifts.MarkReminderSent(ctx, g.ID, now); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}
