package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finlearn/papertrade/internal/config"
	"github.com/finlearn/papertrade/internal/fees"
	"github.com/finlearn/papertrade/internal/logger"
	"github.com/finlearn/papertrade/internal/marketdata"
	"github.com/finlearn/papertrade/internal/storage"
)

// QuoteProvider supplies market quotes. Fetch failures abort the whole trade.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (*marketdata.Quote, error)
	GetQuotes(ctx context.Context, symbols []string, concurrency int) (map[string]*marketdata.Quote, error)
}

// Notifier is told about executed trades after commit; it must never block
// or fail the trade.
type Notifier interface {
	NotifyTrade(trade *storage.Trade)
}

// Service is the only path allowed to mutate portfolios, holdings, trades
// and transactions together.
type Service struct {
	repo     *storage.Repository
	quotes   QuoteProvider
	notifier Notifier
	config   *config.Config
	logger   *logger.Logger
}

func NewService(
	repo *storage.Repository,
	quotes QuoteProvider,
	notifier Notifier,
	cfg *config.Config,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		quotes:   quotes,
		notifier: notifier,
		config:   cfg,
		logger:   log,
	}
}

// EnsurePortfolio returns the caller's active portfolio, creating it with
// the configured initial funding on first use. The funding is recorded as
// the portfolio's first ledger entry so transaction sums always reconcile
// with the cash balance.
func (s *Service) EnsurePortfolio(userID string) (*storage.Portfolio, error) {
	funding := s.config.InitialFunding()
	portfolio := &storage.Portfolio{
		UserID:         userID,
		Name:           "default",
		CashBalance:    funding,
		InitialFunding: funding,
		Active:         true,
	}
	created := false
	err := s.repo.InTx(func(tx *storage.Repository) error {
		existing, err := tx.GetActivePortfolio(userID)
		if err == nil {
			portfolio = existing
			return nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		if err := tx.CreatePortfolio(portfolio); err != nil {
			return err
		}
		created = true
		return tx.CreateTransaction(&storage.Transaction{
			PortfolioID: portfolio.ID,
			Amount:      funding,
			Description: "Initial funding",
		})
	})
	if err != nil {
		// A concurrent provisioner may have won the race; the unique
		// index over active portfolios guarantees whoever committed
		// first owns the row, so re-read instead of failing.
		if existing, lookupErr := s.repo.GetActivePortfolio(userID); lookupErr == nil {
			return existing, nil
		}
		return nil, newError(CodeInternal, "create portfolio", err)
	}

	if created {
		s.logger.Info("portfolio created", "user_id", userID, "funding", funding.String())
	}
	return portfolio, nil
}

// ExecuteTrade validates, prices, records and settles one order atomically.
// The quote is fetched outside the critical section; the state reads and all
// writes share one database transaction, retried on optimistic conflicts.
func (s *Service) ExecuteTrade(ctx context.Context, userID string, order Order) (*storage.Trade, error) {
	portfolio, err := s.repo.GetActivePortfolio(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, newError(CodeNotFound, "no active portfolio", err)
		}
		return nil, newError(CodeInternal, "load portfolio", err)
	}

	// Replays with a known idempotency key return the original trade
	// instead of executing twice.
	if order.IdempotencyKey != "" {
		if existing, err := s.repo.GetTradeByIdempotencyKey(portfolio.ID, order.IdempotencyKey); err == nil {
			return existing, nil
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, newError(CodeInternal, "idempotency lookup", err)
		}
	}

	quote, err := s.quotes.GetQuote(ctx, order.Symbol)
	if err != nil {
		return nil, newError(CodeExternalUnavailable, "market data unavailable", err)
	}

	var trade *storage.Trade
	attempts := s.config.Trading.ExecuteRetries
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		trade, err = s.executeOnce(userID, order, quote)
		if !errors.Is(err, storage.ErrVersionConflict) {
			break
		}
		s.logger.Info("trade retried after concurrent update",
			"user_id", userID, "symbol", order.Symbol, "attempt", attempt)
	}
	if err != nil {
		var le *Error
		if errors.As(err, &le) {
			return nil, le
		}
		if errors.Is(err, storage.ErrVersionConflict) {
			return nil, newError(CodeInternal, "portfolio busy, retries exhausted", err)
		}
		return nil, newError(CodeInternal, "execute trade", err)
	}

	s.logger.Info("trade recorded",
		"user_id", userID, "symbol", trade.Symbol, "side", trade.Side,
		"kind", trade.Kind, "quantity", trade.Quantity,
		"executed_price", trade.ExecutedPrice.String(), "status", trade.Status)

	if trade.Status == storage.StatusExecuted && s.notifier != nil {
		s.notifier.NotifyTrade(trade)
	}
	return trade, nil
}

// executeOnce runs one attempt of the trade inside a single transaction.
func (s *Service) executeOnce(userID string, order Order, quote *marketdata.Quote) (*storage.Trade, error) {
	var trade *storage.Trade
	err := s.repo.InTx(func(tx *storage.Repository) error {
		portfolio, err := tx.GetActivePortfolio(userID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return newError(CodeNotFound, "no active portfolio", err)
			}
			return err
		}

		var holding *storage.Holding
		heldQty := int64(0)
		if h, err := tx.GetHolding(portfolio.ID, order.Symbol); err == nil {
			holding = h
			heldQty = h.Quantity
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		if verr := Validate(order, quote.CurrentPrice, portfolio.CashBalance, heldQty); verr != nil {
			return verr
		}

		// Market orders fill at the quoted price. Limit and stop kinds
		// record the requested price as the execution price up front;
		// they stay pending for a separate matching job.
		executedPrice := quote.CurrentPrice
		if order.Kind != storage.KindMarket {
			executedPrice = order.requestedPrice()
		}

		notional := decimal.NewFromInt(order.Quantity).Mul(executedPrice)
		breakdown, err := fees.Calculate(notional)
		if err != nil {
			return err
		}

		trade = &storage.Trade{
			PortfolioID:   portfolio.ID,
			Symbol:        order.Symbol,
			Side:          order.Side,
			Kind:          order.Kind,
			Quantity:      order.Quantity,
			Price:         order.requestedPrice(),
			ExecutedPrice: executedPrice,
			Fee:           breakdown.Total,
			Status:        storage.StatusPending,
		}
		if order.IdempotencyKey != "" {
			key := order.IdempotencyKey
			trade.IdempotencyKey = &key
		}
		if order.Kind == storage.KindMarket {
			now := time.Now()
			trade.Status = storage.StatusExecuted
			trade.ExecutedAt = &now
		}
		if err := tx.CreateTrade(trade); err != nil {
			return err
		}

		if trade.Status == storage.StatusExecuted {
			return s.settle(tx, portfolio, holding, trade)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trade, nil
}

// settle applies the cash and holding effects of an executed trade and
// appends its ledger entry. Runs inside the caller's transaction.
func (s *Service) settle(tx *storage.Repository, portfolio *storage.Portfolio, holding *storage.Holding, trade *storage.Trade) error {
	notional := decimal.NewFromInt(trade.Quantity).Mul(trade.ExecutedPrice)

	var amount decimal.Decimal
	switch trade.Side {
	case storage.SideBuy:
		cost := notional.Add(trade.Fee)
		newBalance := portfolio.CashBalance.Sub(cost)
		if newBalance.IsNegative() {
			return rejected(ReasonInsufficientFunds)
		}
		if err := tx.UpdatePortfolioCash(portfolio, newBalance); err != nil {
			return err
		}

		if holding == nil {
			holding = &storage.Holding{
				PortfolioID:  portfolio.ID,
				Symbol:       trade.Symbol,
				Quantity:     trade.Quantity,
				AveragePrice: trade.ExecutedPrice,
			}
		} else {
			oldCost := decimal.NewFromInt(holding.Quantity).Mul(holding.AveragePrice)
			newQty := holding.Quantity + trade.Quantity
			holding.AveragePrice = oldCost.Add(notional).Div(decimal.NewFromInt(newQty))
			holding.Quantity = newQty
		}
		if err := tx.SaveHolding(holding); err != nil {
			return err
		}
		amount = cost.Neg()

	case storage.SideSell:
		// Authoritative re-check: the validator saw a snapshot that may
		// be stale by now under concurrent access.
		if holding == nil || holding.Quantity < trade.Quantity {
			return newError(CodeInsufficientHoldings, ReasonInsufficientHoldings, nil)
		}
		proceeds := notional.Sub(trade.Fee)
		if err := tx.UpdatePortfolioCash(portfolio, portfolio.CashBalance.Add(proceeds)); err != nil {
			return err
		}

		holding.Quantity -= trade.Quantity
		if holding.Quantity == 0 {
			if err := tx.DeleteHolding(holding); err != nil {
				return err
			}
		} else {
			if err := tx.SaveHolding(holding); err != nil {
				return err
			}
		}
		amount = proceeds

	default:
		return fmt.Errorf("unknown trade side %q", trade.Side)
	}

	return tx.CreateTransaction(&storage.Transaction{
		PortfolioID: portfolio.ID,
		TradeID:     &trade.ID,
		Amount:      amount,
		Description: fmt.Sprintf("%s %d %s @ %s", trade.Side, trade.Quantity, trade.Symbol, trade.ExecutedPrice.String()),
	})
}

// GetTradeHistory returns one page of the caller's trades, newest first.
func (s *Service) GetTradeHistory(userID string, page, limit int) (*TradePage, error) {
	portfolio, err := s.repo.GetActivePortfolio(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, newError(CodeNotFound, "no active portfolio", err)
		}
		return nil, newError(CodeInternal, "load portfolio", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	trades, total, err := s.repo.ListTrades(portfolio.ID, page, limit)
	if err != nil {
		return nil, newError(CodeInternal, "list trades", err)
	}
	return &TradePage{Trades: trades, Total: total, Page: page, Limit: limit}, nil
}

// TradePage is one slice of trade history plus pagination metadata.
type TradePage struct {
	Trades []storage.Trade `json:"trades"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}
