package advisor

import (
	"fmt"
	"strings"

	"github.com/finlearn/papertrade/internal/ledger"
)

const systemPrompt = `You are a patient investing tutor reviewing a student's paper-trading portfolio.
The student is learning; never give financial advice, explain concepts instead.

For each held symbol, and for the portfolio as a whole, produce a short educational note:
what the position's numbers mean (cost basis, unrealized P&L, concentration) and what a
beginner should pay attention to. Flag concentration above 30% of total value.

Respond strictly as a JSON array:
[
  {
    "symbol": "RELIANCE",
    "verdict": "CONCENTRATED",
    "note": "Explanation aimed at a beginner"
  }
]

Use symbol "PORTFOLIO" for the overall note. Verdicts: HEALTHY, CONCENTRATED, VOLATILE, WATCH.
If there are no holdings, return a single PORTFOLIO entry about getting started.`

func BuildUserPrompt(view *ledger.PortfolioView) string {
	var sb strings.Builder

	sb.WriteString("## Portfolio\n")
	sb.WriteString(fmt.Sprintf("Cash: %s / Total value: %s / Total P&L: %s (%s%%) / Day P&L: %s\n\n",
		view.Portfolio.CashBalance.StringFixed(2),
		view.TotalValue.StringFixed(2),
		view.TotalPnL.StringFixed(2),
		view.TotalReturnPct.StringFixed(2),
		view.DayPnL.StringFixed(2)))

	if len(view.Positions) == 0 {
		sb.WriteString("No holdings yet.\n")
		return sb.String()
	}

	sb.WriteString("| Symbol | Qty | Avg price | Current | Market value | P&L | Day change |\n")
	sb.WriteString("|--------|-----|-----------|---------|--------------|-----|------------|\n")
	for _, p := range view.Positions {
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %s |\n",
			p.Symbol, p.Quantity,
			p.AveragePrice.StringFixed(2), p.CurrentPrice.StringFixed(2),
			p.MarketValue.StringFixed(2), p.PnL.StringFixed(2), p.DayChange.StringFixed(2)))
	}
	sb.WriteString("\nReview the portfolio and reply in JSON.")

	return sb.String()
}
