package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade sides.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Order kinds.
const (
	KindMarket    = "MARKET"
	KindLimit     = "LIMIT"
	KindStopLoss  = "STOP_LOSS"
	KindStopLimit = "STOP_LIMIT"
)

// Trade statuses.
const (
	StatusPending   = "PENDING"
	StatusExecuted  = "EXECUTED"
	StatusCancelled = "CANCELLED"
	StatusExpired   = "EXPIRED"
)

// Portfolio owns a cash balance and a set of holdings. It is mutated only
// through the ledger engine; Version backs the optimistic concurrency check
// on balance updates. Deactivated portfolios are kept, never deleted; the
// partial unique index lets a user with a retired portfolio start a new one
// under the same name while still forbidding two live ones.
type Portfolio struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID         string          `gorm:"not null;uniqueIndex:udx_portfolio_active,where:active = 1" json:"user_id"`
	Name           string          `gorm:"not null;uniqueIndex:udx_portfolio_active" json:"name"`
	CashBalance    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"cash_balance"`
	InitialFunding decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"initial_funding"`
	Version        int64           `gorm:"not null;default:0" json:"-"`
	Active         bool            `gorm:"index;not null;default:true" json:"active"`
}

// Holding is the (portfolio, symbol) position: integer quantity plus the
// weighted-average cost basis. Deleted when quantity reaches zero.
type Holding struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PortfolioID  uint            `gorm:"uniqueIndex:idx_holding_symbol;not null" json:"portfolio_id"`
	Symbol       string          `gorm:"uniqueIndex:idx_holding_symbol;not null" json:"symbol"`
	Quantity     int64           `gorm:"not null" json:"quantity"`
	AveragePrice decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"average_price"`
}

// Trade is immutable once executed. Price is the requested limit/stop price
// and stays zero for market orders; ExecutedPrice is what settlement used.
type Trade struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PortfolioID    uint            `gorm:"index;not null" json:"portfolio_id"`
	Symbol         string          `gorm:"index;not null" json:"symbol"`
	Side           string          `gorm:"not null" json:"side"`
	Kind           string          `gorm:"not null" json:"kind"`
	Quantity       int64           `gorm:"not null" json:"quantity"`
	Price          decimal.Decimal `gorm:"type:decimal(20,8)" json:"price"`
	ExecutedPrice  decimal.Decimal `gorm:"type:decimal(20,8)" json:"executed_price"`
	Fee            decimal.Decimal `gorm:"type:decimal(20,8)" json:"fee"`
	Status         string          `gorm:"not null;default:'PENDING'" json:"status"`
	IdempotencyKey *string         `gorm:"uniqueIndex" json:"idempotency_key,omitempty"`
	ExecutedAt     *time.Time      `json:"executed_at,omitempty"`
}

// Transaction is the append-only cash ledger: negative for buy outflows,
// positive for sell inflows net of fees. TradeID is nil for the initial
// funding entry.
type Transaction struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	PortfolioID uint            `gorm:"index;not null" json:"portfolio_id"`
	TradeID     *uint           `gorm:"index" json:"trade_id,omitempty"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	Description string          `gorm:"not null" json:"description"`
}
