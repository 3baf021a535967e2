package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// AccountStore keeps accounts in process memory. Every balance change is applied
// under one mutex, so a debit can never take a balance below zero.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]domain.Account)}
}

// Ensure AccountStore implements portsrepo.AccountStore
var _ portsrepo.AccountStore = (*AccountStore)(nil)

func (s *AccountStore) SaveAccount(ctx context.Context, account domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.AccountID)
	}
	if account.Status == "" {
		account.Status = domain.AccountActive
	}
	account.CustomLimits = cloneLimits(account.CustomLimits)
	account.FeeWaivers = slices.Clone(account.FeeWaivers)
	s.accounts[account.AccountID] = account
	return nil
}

func (s *AccountStore) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	return copyAccount(account), nil
}

func (s *AccountStore) ApplyBalanceDelta(ctx context.Context, accountID string, amount decimal.Decimal, direction domain.BalanceDirection) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: balance delta cannot be negative", apperrors.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	switch direction {
	case domain.BalanceCredit:
		account.Balance = account.Balance.Add(amount)
	case domain.BalanceDebit:
		if account.Balance.LessThan(amount) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrInsufficientBalance, accountID)
		}
		account.Balance = account.Balance.Sub(amount)
	default:
		return nil, fmt.Errorf("%w: unknown balance direction '%s'", apperrors.ErrValidation, direction)
	}
	account.Version++
	s.accounts[accountID] = account
	return copyAccount(account), nil
}

func (s *AccountStore) UpdateCustomLimits(ctx context.Context, accountID string, limits domain.CustomLimits) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	account.CustomLimits = cloneLimits(&limits)
	account.Version++
	s.accounts[accountID] = account
	return copyAccount(account), nil
}

func (s *AccountStore) SetFeeWaivers(ctx context.Context, accountID string, types []domain.TransactionType) (*domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	account.FeeWaivers = slices.Clone(types)
	account.Version++
	s.accounts[accountID] = account
	return copyAccount(account), nil
}

func copyAccount(a domain.Account) *domain.Account {
	a.CustomLimits = cloneLimits(a.CustomLimits)
	a.FeeWaivers = slices.Clone(a.FeeWaivers)
	return &a
}

func cloneLimits(l *domain.CustomLimits) *domain.CustomLimits {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}
