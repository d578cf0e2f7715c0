package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlearn/papertrade/internal/storage"
)

func seedHolding(t *testing.T, repo *storage.Repository, portfolioID uint, symbol string, qty int64, avg string) {
	t.Helper()
	require.NoError(t, repo.SaveHolding(&storage.Holding{
		PortfolioID:  portfolioID,
		Symbol:       symbol,
		Quantity:     qty,
		AveragePrice: dec(avg),
	}))
}

func TestGetPortfolioMetrics(t *testing.T) {
	quotes := &stubQuotes{}
	quotes.set("INFY", "110", "2")
	quotes.set("TCS", "3700", "-50")
	svc, repo := newTestService(t, quotes)

	portfolio, err := svc.EnsurePortfolio("u1")
	require.NoError(t, err)
	require.NoError(t, repo.UpdatePortfolioCash(portfolio, dec("50000")))
	seedHolding(t, repo, portfolio.ID, "INFY", 10, "100")
	seedHolding(t, repo, portfolio.ID, "TCS", 2, "3650")

	view, err := svc.GetPortfolio(context.Background(), "u1")
	require.NoError(t, err)

	// totalValue = 50000 + 10×110 + 2×3700 = 58500
	assert.True(t, view.TotalValue.Equal(dec("58500")), "total value = %s", view.TotalValue)
	// totalPnL = 10×(110−100) + 2×(3700−3650) = 200
	assert.True(t, view.TotalPnL.Equal(dec("200")), "total pnl = %s", view.TotalPnL)
	// dayPnL = 10×2 + 2×(−50) = −80
	assert.True(t, view.DayPnL.Equal(dec("-80")), "day pnl = %s", view.DayPnL)

	// totalReturn = 200 / (58500 − 200) × 100
	assert.InDelta(t, 0.34305317, view.TotalReturnPct.InexactFloat64(), 1e-6)
	// dayReturn = −80 / 58500 × 100
	assert.InDelta(t, -0.13675214, view.DayReturnPct.InexactFloat64(), 1e-6)

	require.Len(t, view.Positions, 2)
}

func TestGetPortfolioMetricsIdempotent(t *testing.T) {
	quotes := &stubQuotes{}
	quotes.set("INFY", "110", "2")
	svc, repo := newTestService(t, quotes)

	portfolio, err := svc.EnsurePortfolio("u1")
	require.NoError(t, err)
	seedHolding(t, repo, portfolio.ID, "INFY", 10, "100")

	first, err := svc.GetPortfolio(context.Background(), "u1")
	require.NoError(t, err)
	second, err := svc.GetPortfolio(context.Background(), "u1")
	require.NoError(t, err)

	assert.True(t, first.TotalValue.Equal(second.TotalValue))
	assert.True(t, first.TotalPnL.Equal(second.TotalPnL))
	assert.True(t, first.DayPnL.Equal(second.DayPnL))
	assert.True(t, first.TotalReturnPct.Equal(second.TotalReturnPct))
}

func TestGetPortfolioNoHoldings(t *testing.T) {
	svc, _ := newTestService(t, &stubQuotes{})

	_, err := svc.EnsurePortfolio("u1")
	require.NoError(t, err)

	view, err := svc.GetPortfolio(context.Background(), "u1")
	require.NoError(t, err)

	assert.True(t, view.TotalValue.Equal(dec("100000")))
	assert.True(t, view.TotalPnL.IsZero())
	assert.True(t, view.TotalReturnPct.IsZero(), "divide-by-zero guard yields 0")
	assert.Empty(t, view.Positions)
}

func TestGetPositionsEnrichment(t *testing.T) {
	quotes := &stubQuotes{}
	quotes.set("INFY", "110", "2")
	svc, repo := newTestService(t, quotes)

	portfolio, err := svc.EnsurePortfolio("u1")
	require.NoError(t, err)
	seedHolding(t, repo, portfolio.ID, "INFY", 10, "100")

	positions, err := svc.GetPositions(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, positions, 1)

	p := positions[0]
	assert.True(t, p.MarketValue.Equal(dec("1100")))
	assert.True(t, p.PnL.Equal(dec("100")))
	assert.True(t, p.PnLPercent.Equal(dec("10")), "pnl pct = %s", p.PnLPercent)
	assert.True(t, p.DayChange.Equal(dec("20")))
}
