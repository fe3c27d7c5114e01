package models

import "github.com/shopspring/decimal"

// Product is the model for the 'products' table (the basket catalogue).
type Product struct {
	ID       int64           `json:"id" db:"id"`
	Name     string          `json:"name" db:"name"`
	Category string          `json:"category" db:"category"`
	Price    decimal.Decimal `json:"price" db:"price"`
	ImageRef string          `json:"image" db:"image"`
	Active   bool            `json:"active" db:"active"`
}
