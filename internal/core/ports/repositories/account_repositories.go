package repositories

import (
	"context"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// GetAccount retrieves an account by ID. Missing accounts yield apperrors.ErrAccountNotFound.
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// ApplyBalanceDelta atomically adds (credit) or removes (debit) amount from the balance.
	// A debit that would take the balance below zero fails with apperrors.ErrInsufficientBalance
	// and leaves the balance untouched.
	ApplyBalanceDelta(ctx context.Context, accountID string, amount decimal.Decimal, direction domain.BalanceDirection) (*domain.Account, error)

	// UpdateCustomLimits replaces the per-account limit overrides. The balance is never touched.
	UpdateCustomLimits(ctx context.Context, accountID string, limits domain.CustomLimits) (*domain.Account, error)

	// SetFeeWaivers replaces the transaction types the account is not charged fees for.
	SetFeeWaivers(ctx context.Context, accountID string, types []domain.TransactionType) (*domain.Account, error)
}

// AccountStore combines all account-related repository interfaces
type AccountStore interface {
	AccountReader
	AccountWriter
}
