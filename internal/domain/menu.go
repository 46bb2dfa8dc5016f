package domain

import "github.com/shopspring/decimal"

// MenuItem is the catalog view of a dish. Carts keep a copy taken when the item was added.
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Available   *bool           `json:"isAvailable,omitempty"`
}
