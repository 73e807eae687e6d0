package dto

import (
	"golang-portfolio/internal/model"

	"github.com/shopspring/decimal"
)

type OpenPositionRequest struct {
	AccountID string          `json:"account_id"`
	Symbol    string          `json:"symbol" validate:"required,max=32"`
	Name      string          `json:"name" validate:"max=64"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Emotion   string          `json:"emotion" validate:"max=32"`
	Reasons   []string        `json:"reasons" validate:"max=16,dive,max=32"`
	Note      string          `json:"note" validate:"max=512"`
}

type TradeRequest struct {
	PositionID string          `json:"-"`
	Type       model.TradeType `json:"type" validate:"required,oneof=buy sell"`
	Price      decimal.Decimal `json:"price"`
	Quantity   decimal.Decimal `json:"quantity"`
	Emotion    string          `json:"emotion" validate:"max=32"`
	Reasons    []string        `json:"reasons" validate:"max=16,dive,max=32"`
	Note       string          `json:"note" validate:"max=512"`
}

// ReplacePositionsRequest carries the complete position list of one account
// for merge-on-write.
type ReplacePositionsRequest struct {
	AccountID string           `json:"account_id"`
	Positions []model.Position `json:"positions" validate:"required"`
}

type RefreshResult struct {
	Total   int      `json:"total"`
	Updated int      `json:"updated"`
	Skipped []string `json:"skipped,omitempty"`
}
