package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRates is a spot-rate table: units of each currency per one unit of BaseCurrency.
type ExchangeRates struct {
	BaseCurrency string                     `json:"baseCurrency"`
	Rates        map[string]decimal.Decimal `json:"rates"`
	LastUpdated  time.Time                  `json:"lastUpdated"`
	Source       string                     `json:"source"`
	Warning      string                     `json:"warning,omitempty"`
}

// Conversion is the result of converting an amount between two currencies.
type Conversion struct {
	FromCurrency    string          `json:"fromCurrency"`
	ToCurrency      string          `json:"toCurrency"`
	Amount          decimal.Decimal `json:"amount"`
	Rate            decimal.Decimal `json:"rate"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	Fee             decimal.Decimal `json:"fee"`
	NetAmount       decimal.Decimal `json:"netAmount"`
}
