package repositories

import (
	"context"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RuleReader defines read operations for automation rules
type RuleReader interface {
	// FindActiveRulesForAccounts returns the active rules owned by any of accountIDs.
	FindActiveRulesForAccounts(ctx context.Context, accountIDs []string) ([]domain.AutomationRule, error)

	// FindRuleByID retrieves a rule. Missing rules yield apperrors.ErrNotFound.
	FindRuleByID(ctx context.Context, ruleID string) (*domain.AutomationRule, error)

	// ListRulesByAccount returns every rule owned by accountID, active or not.
	ListRulesByAccount(ctx context.Context, accountID string) ([]domain.AutomationRule, error)
}

// RuleWriter defines write operations for automation rules
type RuleWriter interface {
	SaveRule(ctx context.Context, rule domain.AutomationRule) error
	UpdateRule(ctx context.Context, rule domain.AutomationRule) error
	DeleteRule(ctx context.Context, ruleID string) error

	// IncrementStats records one execution. The counters are telemetry only.
	IncrementStats(ctx context.Context, ruleID string, amount decimal.Decimal, executedAt time.Time) error
}

// RuleStore combines all automation rule repository interfaces
type RuleStore interface {
	RuleReader
	RuleWriter
}
