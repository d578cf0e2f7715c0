package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/finlearn/papertrade/internal/fees"
	"github.com/finlearn/papertrade/internal/storage"
)

// Validate decides whether an order is admissible against the given market
// price and portfolio snapshot. Checks run in order, first failure wins, and
// nothing is mutated. The funds pre-check is conservative: it prices the buy
// at the limit price when one was supplied, else at the current market price.
func Validate(order Order, marketPrice, cashBalance decimal.Decimal, heldQuantity int64) *Error {
	if order.Quantity <= 0 {
		return rejected(ReasonInvalidQuantity)
	}

	if order.Side == storage.SideBuy {
		reference := marketPrice
		if order.Price.IsPositive() {
			reference = order.Price
		}
		notional := decimal.NewFromInt(order.Quantity).Mul(reference)
		estimated, err := fees.Calculate(notional)
		if err != nil {
			return newError(CodeValidationRejected, ReasonMissingPrice, err)
		}
		if cashBalance.LessThan(notional.Add(estimated.Total)) {
			return rejected(ReasonInsufficientFunds)
		}
	}

	if order.Side == storage.SideSell && heldQuantity < order.Quantity {
		return rejected(ReasonInsufficientHoldings)
	}

	switch order.Kind {
	case storage.KindLimit:
		if !order.Price.IsPositive() {
			return rejected(ReasonMissingPrice)
		}
	case storage.KindStopLoss:
		if !order.StopPrice.IsPositive() {
			return rejected(ReasonMissingPrice)
		}
	case storage.KindStopLimit:
		if !order.Price.IsPositive() || !order.StopPrice.IsPositive() {
			return rejected(ReasonMissingPrice)
		}
	}

	return nil
}
