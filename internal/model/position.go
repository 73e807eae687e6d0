package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is one instrument held in one account. CostPrice, Quantity and the
// running totals are derived from Transactions and kept denormalized.
type Position struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id,omitempty"`
	Symbol          string          `json:"symbol"`
	Name            string          `json:"name"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	Quantity        decimal.Decimal `json:"quantity"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	ChangePercent   decimal.Decimal `json:"change_percent"`
	Transactions    []Transaction   `json:"transactions"`
	TotalBuyAmount  decimal.Decimal `json:"total_buy_amount"`
	TotalSellAmount decimal.Decimal `json:"total_sell_amount"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// IsCleared reports whether the position has been sold down to zero (or below).
func (p Position) IsCleared() bool {
	return !p.Quantity.IsPositive()
}
