package dto

import (
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UpdateLimitsRequest sets per-account overrides. Omitted fields clear the override.
type UpdateLimitsRequest struct {
	DailyWithdrawal   *decimal.Decimal `json:"dailyWithdrawal" binding:"omitempty,gt=0"`
	DailyTransfer     *decimal.Decimal `json:"dailyTransfer" binding:"omitempty,gt=0"`
	SingleTransaction *decimal.Decimal `json:"singleTransaction" binding:"omitempty,gt=0"`
}

// ToDomain converts the request to custom limits.
func (r UpdateLimitsRequest) ToDomain() domain.CustomLimits {
	return domain.CustomLimits{
		DailyWithdrawal:   r.DailyWithdrawal,
		DailyTransfer:     r.DailyTransfer,
		SingleTransaction: r.SingleTransaction,
	}
}

// LimitsResponse carries an account's limit overview.
type LimitsResponse struct {
	Success bool                  `json:"success"`
	Limits  *domain.AccountLimits `json:"limits"`
}
