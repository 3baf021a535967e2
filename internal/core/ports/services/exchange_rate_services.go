package services

import (
	"context"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExchangeRateSvcFacade defines spot-rate lookups and conversions
type ExchangeRateSvcFacade interface {
	// GetRates returns the rate table rebased on base. An unknown base falls back
	// to the configured base currency with a warning.
	GetRates(ctx context.Context, base string) (*domain.ExchangeRates, error)

	// Convert converts amount and deducts the conversion fee.
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*domain.Conversion, error)
}
