package models

import "time"

// PendingGift is a gift waiting for its recipient to supply a shipping address.
type PendingGift struct {
	ID                string     `json:"id" db:"id" validate:"required"`
	OrderID           string     `json:"orderId" db:"order_id" validate:"required"`
	RecipientEmail    string     `json:"recipientEmail" db:"recipient_email" validate:"required,email"`
	RecipientName     string     `json:"recipientName" db:"recipient_name" validate:"required"`
	SenderName        string     `json:"senderName" db:"sender_name" validate:"required"`
	BasketName        string     `json:"basketName" db:"basket_name" validate:"required"`
	PersonalNote      *string    `json:"personalNote,omitempty" db:"personal_note"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at" validate:"required"`
	ShippingCompleted bool       `json:"shippingCompleted" db:"shipping_completed"`
	ReminderSentAt    *time.Time `json:"reminderSentAt,omitempty" db:"reminder_sent_at"`
}

// GiftShipping is the address a recipient supplies to claim a gift.
type GiftShipping struct {
	FullName    string  `json:"fullName" binding:"required,max=255"`
	AddressLine string  `json:"addressLine" binding:"required,max=512"`
	City        string  `json:"city" binding:"required,max=128"`
	PostalCode  string  `json:"postalCode" binding:"required,max=16"`
	Phone       *string `json:"phone,omitempty" binding:"omitempty,max=32"`
}
