package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finlearn/papertrade/internal/storage"
)

// Order is the validated trade proposal handed to the engine. Price is the
// requested limit price, StopPrice the trigger for stop kinds; both stay zero
// when the kind does not use them.
type Order struct {
	Symbol         string
	Side           string
	Kind           string
	Quantity       int64
	Price          decimal.Decimal
	StopPrice      decimal.Decimal
	IdempotencyKey string
}

// ParseSide maps a payload string onto the closed side set.
func ParseSide(s string) (string, error) {
	switch strings.ToUpper(s) {
	case storage.SideBuy:
		return storage.SideBuy, nil
	case storage.SideSell:
		return storage.SideSell, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// ParseKind maps a payload string onto the closed order-kind set.
func ParseKind(s string) (string, error) {
	switch strings.ToUpper(s) {
	case storage.KindMarket:
		return storage.KindMarket, nil
	case storage.KindLimit:
		return storage.KindLimit, nil
	case storage.KindStopLoss:
		return storage.KindStopLoss, nil
	case storage.KindStopLimit:
		return storage.KindStopLimit, nil
	}
	return "", fmt.Errorf("unknown order kind %q", s)
}

// requestedPrice is the price the client asked for, whichever field carries
// it for the order kind. Zero for market orders.
func (o Order) requestedPrice() decimal.Decimal {
	if o.Price.IsPositive() {
		return o.Price
	}
	return o.StopPrice
}
