package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

const defaultStoreTimeout = 5 * time.Second

// boundedCall runs one store call under its own deadline.
func boundedCall[T any](ctx context.Context, timeout time.Duration, call func(ctx context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	v, err := call(callCtx)
	return v, timeoutAware(err)
}

// timeoutAware tags deadline errors as ErrUnavailable so callers can tell a slow
// store apart from a rejected operation.
func timeoutAware(err error) error {
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, apperrors.ErrUnavailable) {
		return fmt.Errorf("%w: store call timed out: %w", apperrors.ErrUnavailable, err)
	}
	return err
}

func storeTimeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return defaultStoreTimeout
	}
	return timeout
}

// timedAccountStore bounds every account store call by timeout.
type timedAccountStore struct {
	portsrepo.AccountStore
	timeout time.Duration
}

func newTimedAccountStore(store portsrepo.AccountStore, timeout time.Duration) *timedAccountStore {
	if timed, ok := store.(*timedAccountStore); ok {
		return timed
	}
	return &timedAccountStore{AccountStore: store, timeout: storeTimeoutOrDefault(timeout)}
}

func (s *timedAccountStore) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return boundedCall(ctx, s.timeout, func(ctx context.Context) (*domain.Account, error) {
		return s.AccountStore.GetAccount(ctx, accountID)
	})
}

func (s *timedAccountStore) SaveAccount(ctx context.Context, account domain.Account) error {
	_, err := boundedCall(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.AccountStore.SaveAccount(ctx, account)
	})
	return err
}

func (s *timedAccountStore) ApplyBalanceDelta(ctx context.Context, accountID string, amount decimal.Decimal, direction domain.BalanceDirection) (*domain.Account, error) {
	return boundedCall(ctx, s.timeout, func(ctx context.Context) (*domain.Account, error) {
		return s.AccountStore.ApplyBalanceDelta(ctx, accountID, amount, direction)
	})
}

func (s *timedAccountStore) UpdateCustomLimits(ctx context.Context, accountID string, limits domain.CustomLimits) (*domain.Account, error) {
	return boundedCall(ctx, s.timeout, func(ctx context.Context) (*domain.Account, error) {
		return s.AccountStore.UpdateCustomLimits(ctx, accountID, limits)
	})
}

func (s *timedAccountStore) SetFeeWaivers(ctx context.Context, accountID string, types []domain.TransactionType) (*domain.Account, error) {
	return boundedCall(ctx, s.timeout, func(ctx context.Context) (*domain.Account, error) {
		return s.AccountStore.SetFeeWaivers(ctx, accountID, types)
	})
}

// timedLedger bounds every ledger call by timeout.
type timedLedger struct {
	portsrepo.Ledger
	timeout time.Duration
}

func newTimedLedger(ledger portsrepo.Ledger, timeout time.Duration) *timedLedger {
	if timed, ok := ledger.(*timedLedger); ok {
		return timed
	}
	return &timedLedger{Ledger: ledger, timeout: storeTimeoutOrDefault(timeout)}
}

func (l *timedLedger) FindByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return boundedCall(ctx, l.timeout, func(ctx context.Context) (*domain.Transaction, error) {
		return l.Ledger.FindByID(ctx, transactionID)
	})
}

func (l *timedLedger) FindByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	var next *string
	txns, err := boundedCall(ctx, l.timeout, func(ctx context.Context) ([]domain.Transaction, error) {
		txns, n, err := l.Ledger.FindByAccount(ctx, accountID, limit, nextToken)
		next = n
		return txns, err
	})
	return txns, next, err
}

func (l *timedLedger) FindTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	return boundedCall(ctx, l.timeout, func(ctx context.Context) ([]domain.Transaction, error) {
		return l.Ledger.FindTransactions(ctx, filter)
	})
}

func (l *timedLedger) Insert(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	return boundedCall(ctx, l.timeout, func(ctx context.Context) (*domain.Transaction, error) {
		return l.Ledger.Insert(ctx, txn)
	})
}

func (l *timedLedger) UpdateStatus(ctx context.Context, transactionID string, status domain.TransactionStatus) (*domain.Transaction, error) {
	return boundedCall(ctx, l.timeout, func(ctx context.Context) (*domain.Transaction, error) {
		return l.Ledger.UpdateStatus(ctx, transactionID, status)
	})
}

func (l *timedLedger) UpdateDescription(ctx context.Context, transactionID, description string) (*domain.Transaction, error) {
	return boundedCall(ctx, l.timeout, func(ctx context.Context) (*domain.Transaction, error) {
		return l.Ledger.UpdateDescription(ctx, transactionID, description)
	})
}
