package storage

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return NewRepository(db)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedPortfolio(t *testing.T, repo *Repository, userID string) *Portfolio {
	t.Helper()
	p := &Portfolio{
		UserID:         userID,
		Name:           "default",
		CashBalance:    dec("100000"),
		InitialFunding: dec("100000"),
		Active:         true,
	}
	require.NoError(t, repo.CreatePortfolio(p))
	return p
}

func TestGetActivePortfolio(t *testing.T) {
	repo := newTestRepo(t)
	created := seedPortfolio(t, repo, "u1")

	got, err := repo.GetActivePortfolio("u1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.CashBalance.Equal(dec("100000")))

	_, err = repo.GetActivePortfolio("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeactivatedPortfolioIsInvisible(t *testing.T) {
	repo := newTestRepo(t)
	p := seedPortfolio(t, repo, "u1")

	require.NoError(t, repo.DeactivatePortfolio(p))

	_, err := repo.GetActivePortfolio("u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSecondActivePortfolioRejected(t *testing.T) {
	repo := newTestRepo(t)
	p := seedPortfolio(t, repo, "u1")

	dup := &Portfolio{
		UserID:         "u1",
		Name:           "default",
		CashBalance:    dec("100000"),
		InitialFunding: dec("100000"),
		Active:         true,
	}
	require.Error(t, repo.CreatePortfolio(dup), "two live portfolios for one user and name")

	// a retired portfolio frees the name for a fresh start
	require.NoError(t, repo.DeactivatePortfolio(p))
	require.NoError(t, repo.CreatePortfolio(dup))

	got, err := repo.GetActivePortfolio("u1")
	require.NoError(t, err)
	assert.Equal(t, dup.ID, got.ID)
}

func TestUpdatePortfolioCashOptimistic(t *testing.T) {
	repo := newTestRepo(t)
	p := seedPortfolio(t, repo, "u1")

	require.NoError(t, repo.UpdatePortfolioCash(p, dec("90000")))
	assert.True(t, p.CashBalance.Equal(dec("90000")))
	assert.Equal(t, int64(1), p.Version)

	// a stale reader loses the write race
	stale := &Portfolio{ID: p.ID, Version: 0}
	err := repo.UpdatePortfolioCash(stale, dec("80000"))
	assert.ErrorIs(t, err, ErrVersionConflict)

	fresh, err := repo.GetActivePortfolio("u1")
	require.NoError(t, err)
	assert.True(t, fresh.CashBalance.Equal(dec("90000")))
}

func TestHoldingRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	p := seedPortfolio(t, repo, "u1")

	h := &Holding{PortfolioID: p.ID, Symbol: "INFY", Quantity: 10, AveragePrice: dec("1500.5")}
	require.NoError(t, repo.SaveHolding(h))

	got, err := repo.GetHolding(p.ID, "INFY")
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Quantity)
	assert.True(t, got.AveragePrice.Equal(dec("1500.5")))

	require.NoError(t, repo.DeleteHolding(got))
	_, err = repo.GetHolding(p.ID, "INFY")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTradesPagination(t *testing.T) {
	repo := newTestRepo(t)
	p := seedPortfolio(t, repo, "u1")

	for i := 0; i < 7; i++ {
		require.NoError(t, repo.CreateTrade(&Trade{
			PortfolioID: p.ID,
			Symbol:      "INFY",
			Side:        SideBuy,
			Kind:        KindMarket,
			Quantity:    1,
			Status:      StatusExecuted,
		}))
	}

	page1, total, err := repo.ListTrades(p.ID, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	assert.Len(t, page1, 3)

	page3, _, err := repo.ListTrades(p.ID, 3, 3)
	require.NoError(t, err)
	assert.Len(t, page3, 1)
}

func TestTradeIdempotencyKeyLookup(t *testing.T) {
	repo := newTestRepo(t)
	p := seedPortfolio(t, repo, "u1")

	key := "client-key-1"
	trade := &Trade{
		PortfolioID:    p.ID,
		Symbol:         "TCS",
		Side:           SideBuy,
		Kind:           KindMarket,
		Quantity:       1,
		Status:         StatusExecuted,
		IdempotencyKey: &key,
	}
	require.NoError(t, repo.CreateTrade(trade))

	got, err := repo.GetTradeByIdempotencyKey(p.ID, key)
	require.NoError(t, err)
	assert.Equal(t, trade.ID, got.ID)

	_, err = repo.GetTradeByIdempotencyKey(p.ID, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSumTransactions(t *testing.T) {
	repo := newTestRepo(t)
	p := seedPortfolio(t, repo, "u1")

	require.NoError(t, repo.CreateTransaction(&Transaction{
		PortfolioID: p.ID, Amount: dec("100000"), Description: "Initial funding",
	}))
	require.NoError(t, repo.CreateTransaction(&Transaction{
		PortfolioID: p.ID, Amount: dec("-12272.8010276625"), Description: "BUY 5 RELIANCE @ 2450.75",
	}))

	sum, err := repo.SumTransactions(p.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(dec("87727.1989723375")), "sum = %s", sum)
}

func TestInTxRollsBackOnError(t *testing.T) {
	repo := newTestRepo(t)
	p := seedPortfolio(t, repo, "u1")

	err := repo.InTx(func(tx *Repository) error {
		if err := tx.SaveHolding(&Holding{PortfolioID: p.ID, Symbol: "INFY", Quantity: 1, AveragePrice: dec("1")}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	_, err = repo.GetHolding(p.ID, "INFY")
	assert.ErrorIs(t, err, ErrNotFound)
}
