package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portssvc "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/services"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/platform/config"
	"github.com/shopspring/decimal"
)

const rateSourceFallback = "fallback"

// exchangeRateService provides spot-rate lookups from the configured rate table.
type exchangeRateService struct {
	BaseService
	base          string
	rates         map[string]decimal.Decimal
	conversionPct decimal.Decimal
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(exchange config.ExchangeConfig, fees config.FeesConfig, now domain.Clock) portssvc.ExchangeRateSvcFacade {
	rates := make(map[string]decimal.Decimal, len(exchange.FallbackRates)+1)
	for code, rate := range exchange.FallbackRates {
		rates[strings.ToUpper(code)] = rate
	}
	base := strings.ToUpper(exchange.BaseCurrency)
	if _, ok := rates[base]; !ok {
		rates[base] = decimal.NewFromInt(1)
	}
	return &exchangeRateService{
		BaseService:   newBaseService(now, time.UTC),
		base:          base,
		rates:         rates,
		conversionPct: fees.CurrencyConversionPct,
	}
}

// Ensure exchangeRateService implements the ExchangeRateSvcFacade interface
var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

func (s *exchangeRateService) GetRates(ctx context.Context, base string) (*domain.ExchangeRates, error) {
	requested := strings.ToUpper(strings.TrimSpace(base))
	result := &domain.ExchangeRates{
		BaseCurrency: s.base,
		LastUpdated:  s.now().UTC(),
		Source:       rateSourceFallback,
	}

	if requested != "" && requested != s.base {
		if _, ok := s.rates[requested]; ok {
			result.BaseCurrency = requested
		} else {
			result.Warning = fmt.Sprintf("Requested base %s not available. Using %s instead.", requested, s.base)
			s.GetLogger(ctx).Warn("Unknown base currency requested", slog.String("base", requested))
		}
	}

	divisor := s.rates[result.BaseCurrency]
	result.Rates = make(map[string]decimal.Decimal, len(s.rates))
	for code, rate := range s.rates {
		result.Rates[code] = rate.Div(divisor).Round(6)
	}
	return result, nil
}

func (s *exchangeRateService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*domain.Conversion, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}
	fromRate, ok := s.rates[from]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported currency '%s'", apperrors.ErrValidation, from)
	}
	toRate, ok := s.rates[to]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported currency '%s'", apperrors.ErrValidation, to)
	}

	rate := toRate.Div(fromRate)
	converted := amount.Mul(rate).Round(2)
	fee := decimal.Zero
	if from != to {
		fee = converted.Mul(s.conversionPct).Div(hundred).Round(2)
	}

	s.GetLogger(ctx).Debug("Currency converted",
		slog.String("from", from),
		slog.String("to", to),
		slog.String("amount", amount.String()))

	return &domain.Conversion{
		FromCurrency:    from,
		ToCurrency:      to,
		Amount:          amount,
		Rate:            rate.Round(6),
		ConvertedAmount: converted,
		Fee:             fee,
		NetAmount:       converted.Sub(fee),
	}, nil
}
