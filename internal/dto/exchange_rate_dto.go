package dto

import (
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ConvertCurrencyRequest asks for an amount to be converted at the spot rate.
type ConvertCurrencyRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required,gt=0"`
	FromCurrency string          `json:"fromCurrency" binding:"required,len=3"`
	ToCurrency   string          `json:"toCurrency" binding:"required,len=3"`
}

// ExchangeRatesResponse carries the current rate table.
type ExchangeRatesResponse struct {
	Success bool `json:"success"`
	*domain.ExchangeRates
}

// ConversionResponse carries a conversion result.
type ConversionResponse struct {
	Success    bool               `json:"success"`
	Conversion *domain.Conversion `json:"conversion"`
}
