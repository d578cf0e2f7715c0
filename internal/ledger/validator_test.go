package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlearn/papertrade/internal/storage"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValidate(t *testing.T) {
	market := dec("2450.75")

	tests := []struct {
		name       string
		order      Order
		cash       decimal.Decimal
		held       int64
		wantReason string
	}{
		{
			name:  "market buy with ample cash passes",
			order: Order{Symbol: "RELIANCE", Side: storage.SideBuy, Kind: storage.KindMarket, Quantity: 5},
			cash:  dec("100000"),
		},
		{
			name:       "zero quantity rejected",
			order:      Order{Symbol: "RELIANCE", Side: storage.SideBuy, Kind: storage.KindMarket, Quantity: 0},
			cash:       dec("100000"),
			wantReason: ReasonInvalidQuantity,
		},
		{
			name:       "negative quantity rejected",
			order:      Order{Symbol: "RELIANCE", Side: storage.SideSell, Kind: storage.KindMarket, Quantity: -3},
			cash:       dec("100000"),
			held:       10,
			wantReason: ReasonInvalidQuantity,
		},
		{
			name:       "buy with not enough cash for fees rejected",
			order:      Order{Symbol: "RELIANCE", Side: storage.SideBuy, Kind: storage.KindMarket, Quantity: 5},
			cash:       dec("12253.75"), // covers notional but not the fee
			wantReason: ReasonInsufficientFunds,
		},
		{
			name: "buy pre-check uses the limit price when supplied",
			order: Order{Symbol: "RELIANCE", Side: storage.SideBuy, Kind: storage.KindLimit,
				Quantity: 5, Price: dec("2000")},
			cash: dec("10100"), // enough at limit 2000, not at market 2450.75
		},
		{
			name:       "sell without holding rejected",
			order:      Order{Symbol: "RELIANCE", Side: storage.SideSell, Kind: storage.KindMarket, Quantity: 1},
			cash:       dec("100000"),
			held:       0,
			wantReason: ReasonInsufficientHoldings,
		},
		{
			name:       "sell more than held rejected",
			order:      Order{Symbol: "RELIANCE", Side: storage.SideSell, Kind: storage.KindMarket, Quantity: 10},
			cash:       dec("100000"),
			held:       5,
			wantReason: ReasonInsufficientHoldings,
		},
		{
			name:  "sell exactly held passes",
			order: Order{Symbol: "RELIANCE", Side: storage.SideSell, Kind: storage.KindMarket, Quantity: 5},
			cash:  dec("100000"),
			held:  5,
		},
		{
			name:       "limit order without price rejected",
			order:      Order{Symbol: "RELIANCE", Side: storage.SideSell, Kind: storage.KindLimit, Quantity: 1},
			cash:       dec("100000"),
			held:       5,
			wantReason: ReasonMissingPrice,
		},
		{
			name: "stop loss without stop price rejected",
			order: Order{Symbol: "RELIANCE", Side: storage.SideSell, Kind: storage.KindStopLoss,
				Quantity: 1, Price: dec("2400")},
			cash:       dec("100000"),
			held:       5,
			wantReason: ReasonMissingPrice,
		},
		{
			name: "stop limit needs both prices",
			order: Order{Symbol: "RELIANCE", Side: storage.SideSell, Kind: storage.KindStopLimit,
				Quantity: 1, StopPrice: dec("2400")},
			cash:       dec("100000"),
			held:       5,
			wantReason: ReasonMissingPrice,
		},
		{
			name: "stop limit with both prices passes",
			order: Order{Symbol: "RELIANCE", Side: storage.SideSell, Kind: storage.KindStopLimit,
				Quantity: 1, Price: dec("2390"), StopPrice: dec("2400")},
			cash: dec("100000"),
			held: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := Validate(tt.order, market, tt.cash, tt.held)
			if tt.wantReason == "" {
				assert.Nil(t, verr)
				return
			}
			require.NotNil(t, verr)
			assert.Equal(t, CodeValidationRejected, verr.Code)
			assert.Equal(t, tt.wantReason, verr.Reason)
		})
	}
}

func TestValidateQuantityCheckedFirst(t *testing.T) {
	// An order broken in several ways fails on quantity first.
	verr := Validate(Order{Symbol: "X", Side: storage.SideSell, Kind: storage.KindLimit, Quantity: 0},
		dec("100"), decimal.Zero, 0)
	require.NotNil(t, verr)
	assert.Equal(t, ReasonInvalidQuantity, verr.Reason)
}

func TestParseSideAndKind(t *testing.T) {
	side, err := ParseSide("buy")
	require.NoError(t, err)
	assert.Equal(t, storage.SideBuy, side)

	_, err = ParseSide("SHORT")
	assert.Error(t, err)

	kind, err := ParseKind("stop_loss")
	require.NoError(t, err)
	assert.Equal(t, storage.KindStopLoss, kind)

	_, err = ParseKind("TRAILING")
	assert.Error(t, err)
}
