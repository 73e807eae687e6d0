package telegram

import (
	"fmt"
	"golang-portfolio/internal/dto"
	"golang-portfolio/pkg/utils"
	"html"
	"strings"
)

func scopeTitle(title, label string) string {
	if label == "" {
		return fmt.Sprintf("<b>%s</b>\n", title)
	}
	return fmt.Sprintf("<b>%s · %s</b>\n", title, html.EscapeString(label))
}

func formatPositions(label string, summary dto.ProfitSummary) string {
	sb := strings.Builder{}
	sb.WriteString(scopeTitle("📊 Open positions", label))

	if len(summary.Positions) == 0 {
		sb.WriteString("\nNo open positions.")
		return sb.String()
	}

	for idx, p := range summary.Positions {
		name := p.Symbol
		if p.Name != "" {
			name = fmt.Sprintf("%s %s", p.Symbol, p.Name)
		}
		sb.WriteString(fmt.Sprintf("\n<b>%d. %s</b>\n", idx+1, html.EscapeString(name)))
		sb.WriteString(fmt.Sprintf("   Qty %s @ %s → %s\n", p.Quantity.String(), utils.FormatMoney(p.CostPrice), utils.FormatMoney(p.CurrentPrice)))
		sb.WriteString(fmt.Sprintf("   P/L %s (%s)\n", utils.FormatMoney(p.Profit), utils.FormatChangeWithIcon(p.ProfitPercent)))
	}
	return sb.String()
}

func writeSummaryTotals(sb *strings.Builder, summary dto.ProfitSummary) {
	sb.WriteString(fmt.Sprintf("Cost: %s\n", utils.FormatMoney(summary.TotalCost)))
	sb.WriteString(fmt.Sprintf("Value: %s\n", utils.FormatMoney(summary.TotalValue)))
	sb.WriteString(fmt.Sprintf("P/L: %s (%s)\n", utils.FormatMoney(summary.TotalProfit), utils.FormatChangeWithIcon(summary.TotalProfitPercent)))
}

func formatOverview(label string, overview *dto.PortfolioOverview) string {
	sb := strings.Builder{}
	sb.WriteString(scopeTitle("💰 Portfolio summary", label))
	sb.WriteString(fmt.Sprintf("Positions: %d\n", len(overview.Summary.Positions)))
	writeSummaryTotals(&sb, overview.Summary)

	if overview.Cleared != nil {
		sb.WriteString(fmt.Sprintf("\n✅ Realized from %d cleared: %s (%s)\n",
			overview.Cleared.Count,
			utils.FormatMoney(overview.Cleared.TotalProfit),
			utils.FormatPercentage(overview.Cleared.ProfitPercent)))
	}
	return sb.String()
}

func formatCleared(label string, cleared *dto.ClearedProfit) string {
	sb := strings.Builder{}
	sb.WriteString(scopeTitle("✅ Cleared positions", label))

	if cleared == nil {
		sb.WriteString("\nNothing has been fully exited yet.")
		return sb.String()
	}

	for idx, p := range cleared.Positions {
		sb.WriteString(fmt.Sprintf("\n<b>%d. %s</b>\n", idx+1, html.EscapeString(p.Symbol)))
		sb.WriteString(fmt.Sprintf("   Bought %s, sold %s\n", utils.FormatMoney(p.BuyAmount), utils.FormatMoney(p.SellAmount)))
		sb.WriteString(fmt.Sprintf("   Profit %s (%s)\n", utils.FormatMoney(p.Profit), utils.FormatChangeWithIcon(p.ProfitPercent)))
	}
	sb.WriteString(fmt.Sprintf("\n<b>Total</b>: %s (%s)\n", utils.FormatMoney(cleared.TotalProfit), utils.FormatPercentage(cleared.ProfitPercent)))
	return sb.String()
}

func formatAccountStats(report *dto.AccountStatsReport) string {
	sb := strings.Builder{}
	sb.WriteString("<b>🗂 Accounts</b>\n")

	if len(report.Accounts) == 0 {
		sb.WriteString("\nNo accounts yet.")
		return sb.String()
	}

	for _, stats := range report.Accounts {
		name := html.EscapeString(stats.Account.Name)
		if stats.Account.IsDefault {
			name += " ⭐"
		}
		sb.WriteString(fmt.Sprintf("\n<b>%s</b> (%d open)\n", name, stats.PositionCount))
		writeSummaryTotals(&sb, stats.Summary)
	}
	sb.WriteString("\n<b>Total</b>\n")
	writeSummaryTotals(&sb, report.Total)
	return sb.String()
}

func formatRefresh(result *dto.RefreshResult) string {
	msg := fmt.Sprintf("🔄 Refreshed %d of %d positions.", result.Updated, result.Total)
	if len(result.Skipped) > 0 {
		msg += fmt.Sprintf("\n⚠️ No quote for: %s", html.EscapeString(strings.Join(result.Skipped, ", ")))
	}
	return msg
}
