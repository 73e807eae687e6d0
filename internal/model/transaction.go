package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TradeType string

const (
	TradeTypeBuy  TradeType = "buy"
	TradeTypeSell TradeType = "sell"
)

func (t TradeType) IsValid() bool {
	return t == TradeTypeBuy || t == TradeTypeSell
}

// Transaction is a single fill. It is immutable once appended to a Position.
type Transaction struct {
	ID        string          `json:"id"`
	Type      TradeType       `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
	Emotion   string          `json:"emotion,omitempty"`
	Reasons   []string        `json:"reasons,omitempty"`
	Note      string          `json:"note,omitempty"`
}
