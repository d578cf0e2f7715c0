package marketdata

import "github.com/shopspring/decimal"

// Quote is the provider's view of a symbol at call time. The core treats it
// as authoritative for the single call; freshness is not guaranteed.
type Quote struct {
	Symbol        string          `json:"symbol"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
}
