package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// RuleStore keeps automation rules in process memory.
type RuleStore struct {
	mu    sync.RWMutex
	rules map[string]domain.AutomationRule
}

func NewRuleStore() *RuleStore {
	return &RuleStore{rules: make(map[string]domain.AutomationRule)}
}

// Ensure RuleStore implements portsrepo.RuleStore
var _ portsrepo.RuleStore = (*RuleStore)(nil)

func (s *RuleStore) SaveRule(ctx context.Context, rule domain.AutomationRule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[rule.RuleID]; exists {
		return fmt.Errorf("%w: rule %s already exists", apperrors.ErrDuplicate, rule.RuleID)
	}
	s.rules[rule.RuleID] = rule
	return nil
}

func (s *RuleStore) UpdateRule(ctx context.Context, rule domain.AutomationRule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[rule.RuleID]; !exists {
		return fmt.Errorf("%w: rule %s", apperrors.ErrNotFound, rule.RuleID)
	}
	s.rules[rule.RuleID] = rule
	return nil
}

func (s *RuleStore) DeleteRule(ctx context.Context, ruleID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[ruleID]; !exists {
		return fmt.Errorf("%w: rule %s", apperrors.ErrNotFound, ruleID)
	}
	delete(s.rules, ruleID)
	return nil
}

func (s *RuleStore) FindRuleByID(ctx context.Context, ruleID string) (*domain.AutomationRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rule, ok := s.rules[ruleID]
	if !ok {
		return nil, fmt.Errorf("%w: rule %s", apperrors.ErrNotFound, ruleID)
	}
	return &rule, nil
}

func (s *RuleStore) ListRulesByAccount(ctx context.Context, accountID string) ([]domain.AutomationRule, error) {
	return s.find(ctx, func(r domain.AutomationRule) bool {
		return r.AccountID == accountID
	})
}

func (s *RuleStore) FindActiveRulesForAccounts(ctx context.Context, accountIDs []string) ([]domain.AutomationRule, error) {
	return s.find(ctx, func(r domain.AutomationRule) bool {
		return r.IsActive && slices.Contains(accountIDs, r.AccountID)
	})
}

func (s *RuleStore) IncrementStats(ctx context.Context, ruleID string, amount decimal.Decimal, executedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rule, ok := s.rules[ruleID]
	if !ok {
		return fmt.Errorf("%w: rule %s", apperrors.ErrNotFound, ruleID)
	}
	rule.ExecutionCount++
	rule.TotalAmountProcessed = rule.TotalAmountProcessed.Add(amount)
	rule.LastExecuted = &executedAt
	s.rules[ruleID] = rule
	return nil
}

// find returns matching rules oldest first so evaluation order is stable.
func (s *RuleStore) find(ctx context.Context, match func(domain.AutomationRule) bool) ([]domain.AutomationRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]domain.AutomationRule, 0)
	for _, r := range s.rules {
		if match(r) {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.AutomationRule) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.RuleID < b.RuleID:
			return -1
		case a.RuleID > b.RuleID:
			return 1
		}
		return 0
	})
	return out, nil
}
