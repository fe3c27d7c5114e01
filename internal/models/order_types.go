package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	// OrderPending is a gift order waiting for the recipient's shipping address.
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
)

// Order is the model for the 'orders' table
type Order struct {
	ID          string          `json:"id" db:"id"`
	CustomerID  string          `json:"customerId" db:"customer_id"`
	Status      OrderStatus     `json:"status" db:"status"`
	Total       decimal.Decimal `json:"total" db:"total"`
	IsGift      bool            `json:"isGift" db:"is_gift"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	CompletedAt *time.Time      `json:"completedAt,omitempty" db:"completed_at"`
}

// OrderItem is the model for the 'order_items' table
type OrderItem struct {
	ID         int64           `json:"id" db:"id"`
	OrderID    string          `json:"orderId" db:"order_id"`
	ProductID  int64           `json:"productId" db:"product_id"`
	BasketName string          `json:"basketName" db:"basket_name"`
	Quantity   int             `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice" db:"unit_price"` // Price at the time of purchase
	IsGift     bool            `json:"isGift" db:"is_gift"`
}

// Review is the model for the 'reviews' table
type Review struct {
	ID         string    `json:"id" db:"id"`
	OrderID    string    `json:"orderId" db:"order_id"`
	CustomerID string    `json:"customerId" db:"customer_id"`
	Rating     int       `json:"rating" db:"rating"`
	Comment    string    `json:"comment" db:"comment"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// ReviewReminder tracks how many review nudges an order has received.
// ReminderCount only moves forward; NextSendAt is nil once the count is final.
type ReviewReminder struct {
	OrderID       string     `json:"orderId" db:"order_id"`
	CustomerID    string     `json:"customerId" db:"customer_id"`
	ReminderCount int        `json:"reminderCount" db:"reminder_count"`
	LastSentAt    time.Time  `json:"lastSentAt" db:"last_sent_at"`
	NextSendAt    *time.Time `json:"nextSendAt,omitempty" db:"next_send_at"`
}
