package service

import (
	"golang-portfolio/internal/dto"
	"golang-portfolio/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// percentOf returns part/whole*100, or zero when whole is not positive.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// CalculatePositionProfit is the unrealized profit of the currently held quantity.
func CalculatePositionProfit(p model.Position) dto.PositionProfit {
	cost := p.CostPrice.Mul(p.Quantity)
	value := p.CurrentPrice.Mul(p.Quantity)
	profit := value.Sub(cost)

	return dto.PositionProfit{
		PositionID:    p.ID,
		AccountID:     p.AccountID,
		Symbol:        p.Symbol,
		Name:          p.Name,
		Quantity:      p.Quantity,
		CostPrice:     p.CostPrice,
		CurrentPrice:  p.CurrentPrice,
		Cost:          cost,
		Value:         value,
		Profit:        profit,
		ProfitPercent: percentOf(profit, cost),
	}
}

// CalculateProfitSummary aggregates open positions. Cleared positions are only
// part of the sums when includeCleared is set.
func CalculateProfitSummary(positions []model.Position, includeCleared bool) dto.ProfitSummary {
	summary := dto.ProfitSummary{
		TotalCost:          decimal.Zero,
		TotalValue:         decimal.Zero,
		TotalProfit:        decimal.Zero,
		TotalProfitPercent: decimal.Zero,
		Positions:          []dto.PositionProfit{},
	}

	for _, p := range positions {
		if p.IsCleared() && !includeCleared {
			continue
		}
		profit := CalculatePositionProfit(p)
		summary.TotalCost = summary.TotalCost.Add(profit.Cost)
		summary.TotalValue = summary.TotalValue.Add(profit.Value)
		summary.TotalProfit = summary.TotalProfit.Add(profit.Profit)
		summary.Positions = append(summary.Positions, profit)
	}

	summary.TotalProfitPercent = percentOf(summary.TotalProfit, summary.TotalCost)
	return summary
}

// CalculateClearedProfit rolls up the realized profit of fully exited
// positions. It returns nil when there is none, which callers must not read as
// a zero profit.
func CalculateClearedProfit(positions []model.Position) *dto.ClearedProfit {
	var cleared []dto.ClearedPositionProfit
	totalBuy, totalSell := decimal.Zero, decimal.Zero

	for _, p := range positions {
		if !p.IsCleared() {
			continue
		}
		profit := p.TotalSellAmount.Sub(p.TotalBuyAmount)
		cleared = append(cleared, dto.ClearedPositionProfit{
			PositionID:    p.ID,
			AccountID:     p.AccountID,
			Symbol:        p.Symbol,
			Name:          p.Name,
			BuyAmount:     p.TotalBuyAmount,
			SellAmount:    p.TotalSellAmount,
			Profit:        profit,
			ProfitPercent: percentOf(profit, p.TotalBuyAmount),
		})
		totalBuy = totalBuy.Add(p.TotalBuyAmount)
		totalSell = totalSell.Add(p.TotalSellAmount)
	}

	if len(cleared) == 0 {
		return nil
	}

	totalProfit := totalSell.Sub(totalBuy)
	return &dto.ClearedProfit{
		TotalBuyAmount:  totalBuy,
		TotalSellAmount: totalSell,
		TotalProfit:     totalProfit,
		ProfitPercent:   percentOf(totalProfit, totalBuy),
		Count:           len(cleared),
		Positions:       cleared,
	}
}
