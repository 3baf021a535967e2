package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/platform/config"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/repositories/database/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fixedNow is a Tuesday morning, inside business hours.
var fixedNow = time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Location = time.UTC
	cfg.StoreCallTimeout = time.Second
	return cfg
}

// stores bundles the in-memory adapters behind a RepositoryProvider.
type stores struct {
	accounts *memory.AccountStore
	ledger   *memory.Ledger
	rules    *memory.RuleStore
}

func newStores() *stores {
	return &stores{
		accounts: memory.NewAccountStore(),
		ledger:   memory.NewLedger(),
		rules:    memory.NewRuleStore(),
	}
}

func (s *stores) provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{AccountStore: s.accounts, Ledger: s.ledger, RuleStore: s.rules}
}

func (s *stores) seed(t *testing.T, id, balance string, status domain.AccountStatus) {
	t.Helper()
	require.NoError(t, s.accounts.SaveAccount(context.Background(), domain.Account{
		AccountID: id,
		Balance:   dec(balance),
		Currency:  "TND",
		Status:    status,
	}))
}

func (s *stores) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	acc, err := s.accounts.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance
}

func (s *stores) addRule(t *testing.T, rule domain.AutomationRule) {
	t.Helper()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = fixedNow
	}
	rule.IsActive = true
	require.NoError(t, s.rules.SaveRule(context.Background(), rule))
}

var errInjected = errors.New("injected store failure")

// faultyAccounts wraps an AccountStore and fails selected balance changes.
type faultyAccounts struct {
	portsrepo.AccountStore
	mu sync.Mutex
	// failCredit fails credits to these accounts.
	failCredit map[string]bool
	// hangCredit blocks credits to these accounts until the call context expires.
	hangCredit map[string]bool
}

func (f *faultyAccounts) ApplyBalanceDelta(ctx context.Context, accountID string, amount decimal.Decimal, direction domain.BalanceDirection) (*domain.Account, error) {
	f.mu.Lock()
	fail := direction == domain.BalanceCredit && f.failCredit[accountID]
	hang := direction == domain.BalanceCredit && f.hangCredit[accountID]
	f.mu.Unlock()

	if hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if fail {
		return nil, errInjected
	}
	return f.AccountStore.ApplyBalanceDelta(ctx, accountID, amount, direction)
}

// MockCategoryResolver mocks portsrepo.CategoryResolver
type MockCategoryResolver struct {
	mock.Mock
}

var _ portsrepo.CategoryResolver = (*MockCategoryResolver)(nil)

func (m *MockCategoryResolver) Resolve(ctx context.Context, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

// MockEventPublisher mocks portsrepo.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

var _ portsrepo.EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	args := m.Called(ctx, eventType, payload)
	return args.Error(0)
}

// faultyLedger wraps a Ledger and fails the next failStatus[s] moves to status s.
type faultyLedger struct {
	portsrepo.Ledger
	mu         sync.Mutex
	failStatus map[domain.TransactionStatus]int
}

func (f *faultyLedger) UpdateStatus(ctx context.Context, transactionID string, status domain.TransactionStatus) (*domain.Transaction, error) {
	f.mu.Lock()
	if f.failStatus[status] > 0 {
		f.failStatus[status]--
		f.mu.Unlock()
		return nil, errInjected
	}
	f.mu.Unlock()
	return f.Ledger.UpdateStatus(ctx, transactionID, status)
}

// hangingAccounts blocks GetAccount until the call context expires.
type hangingAccounts struct {
	portsrepo.AccountStore
}

func (h *hangingAccounts) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// hangingLedger blocks FindTransactions until the call context expires.
type hangingLedger struct {
	portsrepo.Ledger
}

func (h *hangingLedger) FindTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
