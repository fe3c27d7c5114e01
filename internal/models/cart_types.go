package models

import "github.com/shopspring/decimal"

// CartItem is one line of a shopping cart as the storefront serializes it.
// The same product may appear twice: once for the buyer and once as a gift.
type CartItem struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"image"`
	IsGift    bool            `json:"isGift"`
}

// Matches reports whether the line has the identity (id, isGift).
func (i CartItem) Matches(id int64, isGift bool) bool {
	return i.ID == id && i.IsGift == isGift
}

// LineTotal is unit price times quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
