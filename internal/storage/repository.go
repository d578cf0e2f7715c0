package storage

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrVersionConflict is returned when an optimistic portfolio update loses
// the race against a concurrent writer.
var ErrVersionConflict = errors.New("portfolio version conflict")

// ErrNotFound re-exports gorm's sentinel so callers stay ORM-agnostic.
var ErrNotFound = gorm.ErrRecordNotFound

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InTx runs fn against a repository bound to one database transaction.
// Any error from fn rolls the whole transaction back.
func (r *Repository) InTx(fn func(*Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Ping() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Portfolios

func (r *Repository) CreatePortfolio(p *Portfolio) error {
	return r.db.Create(p).Error
}

func (r *Repository) GetActivePortfolio(userID string) (*Portfolio, error) {
	var p Portfolio
	err := r.db.Where("user_id = ? AND active = ?", userID, true).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePortfolioCash writes the new balance guarded by the version the
// caller read. Zero rows affected means another writer got there first.
func (r *Repository) UpdatePortfolioCash(p *Portfolio, balance decimal.Decimal) error {
	res := r.db.Model(&Portfolio{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]any{"cash_balance": balance, "version": p.Version + 1})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	p.CashBalance = balance
	p.Version++
	return nil
}

func (r *Repository) DeactivatePortfolio(p *Portfolio) error {
	return r.db.Model(p).Update("active", false).Error
}

// Holdings

func (r *Repository) GetHolding(portfolioID uint, symbol string) (*Holding, error) {
	var h Holding
	err := r.db.Where("portfolio_id = ? AND symbol = ?", portfolioID, symbol).First(&h).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *Repository) GetHoldings(portfolioID uint) ([]Holding, error) {
	var holdings []Holding
	err := r.db.Where("portfolio_id = ?", portfolioID).Order("symbol").Find(&holdings).Error
	return holdings, err
}

func (r *Repository) SaveHolding(h *Holding) error {
	return r.db.Save(h).Error
}

func (r *Repository) DeleteHolding(h *Holding) error {
	return r.db.Delete(h).Error
}

// Trades

func (r *Repository) CreateTrade(t *Trade) error {
	return r.db.Create(t).Error
}

func (r *Repository) GetTradeByIdempotencyKey(portfolioID uint, key string) (*Trade, error) {
	var t Trade
	err := r.db.Where("portfolio_id = ? AND idempotency_key = ?", portfolioID, key).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTrades returns one page of trades, newest first, plus the total count.
func (r *Repository) ListTrades(portfolioID uint, page, limit int) ([]Trade, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int64
	if err := r.db.Model(&Trade{}).Where("portfolio_id = ?", portfolioID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var trades []Trade
	err := r.db.Where("portfolio_id = ?", portfolioID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&trades).Error
	return trades, total, err
}

// Transactions

func (r *Repository) CreateTransaction(tx *Transaction) error {
	return r.db.Create(tx).Error
}

// SumTransactions returns the signed total of all ledger entries for a
// portfolio; with the funding entry included it must equal the cash balance.
func (r *Repository) SumTransactions(portfolioID uint) (decimal.Decimal, error) {
	var txs []Transaction
	if err := r.db.Where("portfolio_id = ?", portfolioID).Find(&txs).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total, nil
}
