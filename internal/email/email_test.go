package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestComposeGiftReminder(t *testing.T) {
	msg, err := ComposeGiftReminder(GiftReminder{
		RecipientEmail: "lucia@example.com",
		RecipientName:  "Lucía",
		SenderName:     "Ana",
		BasketName:     "Cesta Mediterránea",
		PersonalNote:   "¡Feliz cumple! <3",
		Link:           "https://experienciaselecta.com/regalo/g-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "lucia@example.com", msg.To)
	assert.Equal(t, "Ana te ha enviado un regalo", msg.Subject)
	assert.Contains(t, msg.HTML, `href="https://experienciaselecta.com/regalo/g-1"`)
	assert.Contains(t, msg.HTML, "¡Feliz cumple! &lt;3")
	assert.Contains(t, msg.Text, "Cesta Mediterránea")
	assert.Contains(t, msg.Text, "\"¡Feliz cumple! <3\"")
}

func TestComposeGiftReminderWithoutNote(t *testing.T) {
	msg, err := ComposeGiftReminder(GiftReminder{RecipientEmail: "a@b.c", RecipientName: "Lucía", SenderName: "Ana", BasketName: "Cesta"})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "blockquote")
}

func TestComposeReviewReminder(t *testing.T) {
	first, err := ComposeReviewReminder(ReviewReminder{
		CustomerEmail: "ana@example.com", CustomerName: "Ana", BasketName: "Cesta Ibérica",
		Link: "https://experienciaselecta.com/auth/magic?token=abc", Attempt: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "¿Qué te ha parecido tu Cesta Ibérica?", first.Subject)
	assert.Contains(t, first.Text, "/auth/magic?token=abc")

	third, err := ComposeReviewReminder(ReviewReminder{CustomerEmail: "ana@example.com", BasketName: "Cesta Ibérica", Attempt: 3})
	require.NoError(t, err)
	assert.Equal(t, "Recordatorio: ¿Qué te ha parecido tu Cesta Ibérica?", third.Subject)
}

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer(zap.New(core))

	require.NoError(t, m.Send(context.Background(), Message{To: "ana@example.com", Subject: "Hola"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "ana@example.com", logs.All()[0].ContextMap()["to"])

	assert.Error(t, m.Send(context.Background(), Message{Subject: "sin destinatario"}))
}
