package dto

import "github.com/shopspring/decimal"

type PositionProfit struct {
	PositionID    string          `json:"position_id"`
	AccountID     string          `json:"account_id,omitempty"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Quantity      decimal.Decimal `json:"quantity"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	Cost          decimal.Decimal `json:"cost"`
	Value         decimal.Decimal `json:"value"`
	Profit        decimal.Decimal `json:"profit"`
	ProfitPercent decimal.Decimal `json:"profit_percent"`
}

type ProfitSummary struct {
	TotalCost          decimal.Decimal  `json:"total_cost"`
	TotalValue         decimal.Decimal  `json:"total_value"`
	TotalProfit        decimal.Decimal  `json:"total_profit"`
	TotalProfitPercent decimal.Decimal  `json:"total_profit_percent"`
	Positions          []PositionProfit `json:"positions"`
}

type ClearedPositionProfit struct {
	PositionID    string          `json:"position_id"`
	AccountID     string          `json:"account_id,omitempty"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	BuyAmount     decimal.Decimal `json:"buy_amount"`
	SellAmount    decimal.Decimal `json:"sell_amount"`
	Profit        decimal.Decimal `json:"profit"`
	ProfitPercent decimal.Decimal `json:"profit_percent"`
}

type ClearedProfit struct {
	TotalBuyAmount  decimal.Decimal         `json:"total_buy_amount"`
	TotalSellAmount decimal.Decimal         `json:"total_sell_amount"`
	TotalProfit     decimal.Decimal         `json:"total_profit"`
	ProfitPercent   decimal.Decimal         `json:"profit_percent"`
	Count           int                     `json:"count"`
	Positions       []ClearedPositionProfit `json:"positions"`
}

// PortfolioOverview is what the summary endpoint and the bot render. Cleared is
// nil when no position has been fully exited.
type PortfolioOverview struct {
	AccountID      string         `json:"account_id,omitempty"`
	IncludeCleared bool           `json:"include_cleared"`
	Summary        ProfitSummary  `json:"summary"`
	Cleared        *ClearedProfit `json:"cleared,omitempty"`
}
