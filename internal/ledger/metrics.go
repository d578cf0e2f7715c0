package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/finlearn/papertrade/internal/marketdata"
	"github.com/finlearn/papertrade/internal/storage"
)

var hundred = decimal.NewFromInt(100)

// Position is one holding enriched with live valuation.
type Position struct {
	Symbol       string          `json:"symbol"`
	Quantity     int64           `json:"quantity"`
	AveragePrice decimal.Decimal `json:"average_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	MarketValue  decimal.Decimal `json:"market_value"`
	PnL          decimal.Decimal `json:"pnl"`
	PnLPercent   decimal.Decimal `json:"pnl_percent"`
	DayChange    decimal.Decimal `json:"day_change"`
}

// PortfolioView is the read-time valuation snapshot of a portfolio. Nothing
// here is persisted; two calls without intervening trades and with identical
// quotes yield identical figures.
type PortfolioView struct {
	Portfolio      *storage.Portfolio `json:"portfolio"`
	TotalValue     decimal.Decimal    `json:"total_value"`
	TotalPnL       decimal.Decimal    `json:"total_pnl"`
	DayPnL         decimal.Decimal    `json:"day_pnl"`
	TotalReturnPct decimal.Decimal    `json:"total_return_pct"`
	DayReturnPct   decimal.Decimal    `json:"day_return_pct"`
	Positions      []Position         `json:"positions"`
}

// GetPortfolio loads the caller's portfolio and derives its valuation from
// live quotes, one fetch per distinct held symbol.
func (s *Service) GetPortfolio(ctx context.Context, userID string) (*PortfolioView, error) {
	portfolio, err := s.repo.GetActivePortfolio(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, newError(CodeNotFound, "no active portfolio", err)
		}
		return nil, newError(CodeInternal, "load portfolio", err)
	}

	positions, err := s.positions(ctx, portfolio.ID)
	if err != nil {
		return nil, err
	}

	view := &PortfolioView{
		Portfolio:      portfolio,
		TotalValue:     portfolio.CashBalance,
		TotalPnL:       decimal.Zero,
		DayPnL:         decimal.Zero,
		TotalReturnPct: decimal.Zero,
		DayReturnPct:   decimal.Zero,
		Positions:      positions,
	}
	for _, p := range positions {
		view.TotalValue = view.TotalValue.Add(p.MarketValue)
		view.TotalPnL = view.TotalPnL.Add(p.PnL)
		view.DayPnL = view.DayPnL.Add(p.DayChange)
	}

	invested := view.TotalValue.Sub(view.TotalPnL)
	if !invested.IsZero() {
		view.TotalReturnPct = view.TotalPnL.Div(invested).Mul(hundred)
	}
	if !view.TotalValue.IsZero() {
		view.DayReturnPct = view.DayPnL.Div(view.TotalValue).Mul(hundred)
	}
	return view, nil
}

// GetPositions returns the caller's holdings with live valuation.
func (s *Service) GetPositions(ctx context.Context, userID string) ([]Position, error) {
	portfolio, err := s.repo.GetActivePortfolio(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, newError(CodeNotFound, "no active portfolio", err)
		}
		return nil, newError(CodeInternal, "load portfolio", err)
	}
	return s.positions(ctx, portfolio.ID)
}

func (s *Service) positions(ctx context.Context, portfolioID uint) ([]Position, error) {
	holdings, err := s.repo.GetHoldings(portfolioID)
	if err != nil {
		return nil, newError(CodeInternal, "load holdings", err)
	}
	if len(holdings) == 0 {
		return []Position{}, nil
	}

	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol)
	}
	quotes, err := s.quotes.GetQuotes(ctx, symbols, s.config.Trading.QuoteConcurrency)
	if err != nil {
		return nil, newError(CodeExternalUnavailable, "market data unavailable", err)
	}

	positions := make([]Position, 0, len(holdings))
	for _, h := range holdings {
		quote, ok := quotes[h.Symbol]
		if !ok {
			return nil, newError(CodeExternalUnavailable, "missing quote for "+h.Symbol, nil)
		}
		positions = append(positions, enrich(h, quote))
	}
	return positions, nil
}

func enrich(h storage.Holding, quote *marketdata.Quote) Position {
	qty := decimal.NewFromInt(h.Quantity)
	marketValue := qty.Mul(quote.CurrentPrice)
	cost := qty.Mul(h.AveragePrice)

	p := Position{
		Symbol:       h.Symbol,
		Quantity:     h.Quantity,
		AveragePrice: h.AveragePrice,
		CurrentPrice: quote.CurrentPrice,
		MarketValue:  marketValue,
		PnL:          marketValue.Sub(cost),
		DayChange:    qty.Mul(quote.Change),
	}
	if !cost.IsZero() {
		p.PnLPercent = p.PnL.Div(cost).Mul(hundred)
	}
	return p
}
