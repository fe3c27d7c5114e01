package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// GiftReminder is the data for the nudge sent to a gift recipient who has
// not yet supplied a shipping address.
type GiftReminder struct {
	RecipientEmail string
	RecipientName  string
	SenderName     string
	BasketName     string
	PersonalNote   string
	Link           string
}

// ReviewReminder is the data for the nudge asking a customer to review an order.
type ReviewReminder struct {
	CustomerEmail string
	CustomerName  string
	BasketName    string
	Link          string
	// Attempt is 1 for the first reminder.
	Attempt int
}

var giftHTML = template.Must(template.New("gift").Parse(`<p>Hola {{.RecipientName}},</p>
<p>{{.SenderName}} te ha regalado una <strong>{{.BasketName}}</strong> de Experiencia Selecta y todavía no sabemos a dónde enviarla.</p>
{{if .PersonalNote}}<blockquote>{{.PersonalNote}}</blockquote>
{{end}}<p><a href="{{.Link}}">Indícanos tu dirección de envío</a></p>
<p>¡Gracias!<br>El equipo de Experiencia Selecta</p>`))

var reviewHTML = template.Must(template.New("review").Parse(`<p>Hola {{.CustomerName}},</p>
<p>¿Qué te ha parecido tu <strong>{{.BasketName}}</strong>? Tu opinión nos ayuda a seguir mejorando.</p>
<p><a href="{{.Link}}">Deja tu valoración</a></p>
<p>Gracias por confiar en Experiencia Selecta.</p>`))

// ComposeGiftReminder builds the recipient reminder message.
func ComposeGiftReminder(d GiftReminder) (Message, error) {
	var html bytes.Buffer
	if err := giftHTML.Execute(&html, d); err != nil {
		return Message{}, fmt.Errorf("render gift reminder: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hola %s,\n\n", d.RecipientName)
	fmt.Fprintf(&text, "%s te ha regalado una %s de Experiencia Selecta y todavía no sabemos a dónde enviarla.\n\n", d.SenderName, d.BasketName)
	if d.PersonalNote != "" {
		fmt.Fprintf(&text, "\"%s\"\n\n", d.PersonalNote)
	}
	fmt.Fprintf(&text, "Indícanos tu dirección de envío: %s\n", d.Link)

	return Message{
		To:      d.RecipientEmail,
		Subject: fmt.Sprintf("%s te ha enviado un regalo", d.SenderName),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// ComposeReviewReminder builds the review request message.
func ComposeReviewReminder(d ReviewReminder) (Message, error) {
	var html bytes.Buffer
	if err := reviewHTML.Execute(&html, d); err != nil {
		return Message{}, fmt.Errorf("render review reminder: %w", err)
	}

	subject := "¿Qué te ha parecido tu " + d.BasketName + "?"
	if d.Attempt > 1 {
		subject = "Recordatorio: " + subject
	}

	text := fmt.Sprintf("Hola %s,\n\n¿Qué te ha parecido tu %s? Tu opinión nos ayuda a seguir mejorando.\n\nDeja tu valoración: %s\n",
		d.CustomerName, d.BasketName, d.Link)

	return Message{
		To:      d.CustomerEmail,
		Subject: subject,
		HTML:    html.String(),
		Text:    text,
	}, nil
}
