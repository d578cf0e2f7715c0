// Package fees computes the regulatory and brokerage charges on a notional
// trade value. Every component is a pure function of the value; rates follow
// the Indian equity delivery schedule the simulator models.
package fees

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	brokerageRate = decimal.NewFromFloat(0.0003)
	brokerageCap  = decimal.NewFromInt(20)
	sttRate       = decimal.NewFromFloat(0.001)
	exchangeRate  = decimal.NewFromFloat(0.0000345)
	sebiRate      = decimal.NewFromFloat(0.00001)
	stampRate     = decimal.NewFromFloat(0.00015)
	gstRate       = decimal.NewFromFloat(0.18)
)

// Breakdown itemizes the charges on one trade.
type Breakdown struct {
	Brokerage      decimal.Decimal `json:"brokerage"`
	STT            decimal.Decimal `json:"stt"`
	ExchangeCharge decimal.Decimal `json:"exchange_charge"`
	SEBICharge     decimal.Decimal `json:"sebi_charge"`
	StampDuty      decimal.Decimal `json:"stamp_duty"`
	GST            decimal.Decimal `json:"gst"`
	Total          decimal.Decimal `json:"total"`
}

// Calculate returns the fee breakdown for a notional value (quantity × price).
// The only rejected input is a negative value.
func Calculate(value decimal.Decimal) (Breakdown, error) {
	if value.IsNegative() {
		return Breakdown{}, fmt.Errorf("notional value must not be negative: %s", value)
	}

	b := Breakdown{
		Brokerage:      decimal.Min(value.Mul(brokerageRate), brokerageCap),
		STT:            value.Mul(sttRate),
		ExchangeCharge: value.Mul(exchangeRate),
		SEBICharge:     value.Mul(sebiRate),
		StampDuty:      value.Mul(stampRate),
	}
	b.GST = b.Brokerage.Add(b.ExchangeCharge).Mul(gstRate)
	b.Total = b.Brokerage.
		Add(b.STT).
		Add(b.ExchangeCharge).
		Add(b.SEBICharge).
		Add(b.StampDuty).
		Add(b.GST)
	return b, nil
}
