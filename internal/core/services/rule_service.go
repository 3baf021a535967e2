package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	portssvc "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/services"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ruleService manages automation rule definitions and reports on their executions.
type ruleService struct {
	BaseService
	rules    portsrepo.RuleStore
	accounts portsrepo.AccountReader
	ledger   portsrepo.LedgerReader
}

// NewRuleService creates the automation rule service.
func NewRuleService(rules portsrepo.RuleStore, accounts portsrepo.AccountReader, ledger portsrepo.LedgerReader, now domain.Clock, loc *time.Location) portssvc.RuleSvcFacade {
	return &ruleService{
		BaseService: newBaseService(now, loc),
		rules:       rules,
		accounts:    accounts,
		ledger:      ledger,
	}
}

// Ensure ruleService implements the RuleSvcFacade interface
var _ portssvc.RuleSvcFacade = (*ruleService)(nil)

func (s *ruleService) CreateRule(ctx context.Context, req dto.AutomationRuleRequest) (*domain.AutomationRule, error) {
	rule := req.ToDomain()
	if err := s.validate(ctx, rule); err != nil {
		return nil, err
	}

	rule.RuleID = uuid.NewString()
	rule.TotalAmountProcessed = decimal.Zero
	rule.AuditFields = domain.NewAuditFields(domain.SystemActor, s.now())

	if err := s.rules.SaveRule(ctx, rule); err != nil {
		s.LogError(ctx, err, "Failed to save automation rule", slog.String("account_id", rule.AccountID))
		return nil, fmt.Errorf("failed to save automation rule: %w", err)
	}
	s.GetLogger(ctx).Info("Automation rule created",
		slog.String("rule_id", rule.RuleID),
		slog.String("account_id", rule.AccountID),
		slog.String("type", string(rule.Type)))
	return &rule, nil
}

func (s *ruleService) GetRule(ctx context.Context, ruleID string) (*domain.AutomationRule, error) {
	rule, err := s.rules.FindRuleByID(ctx, ruleID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get automation rule", slog.String("rule_id", ruleID))
		}
		return nil, err
	}
	return rule, nil
}

func (s *ruleService) ListRulesByAccount(ctx context.Context, accountID string) ([]domain.AutomationRule, error) {
	rules, err := s.rules.ListRulesByAccount(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list automation rules", slog.String("account_id", accountID))
		return nil, err
	}
	return rules, nil
}

// UpdateRule replaces a rule's definition. Identity, owner and statistics are kept.
func (s *ruleService) UpdateRule(ctx context.Context, ruleID string, req dto.AutomationRuleRequest) (*domain.AutomationRule, error) {
	existing, err := s.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	updated := req.ToDomain()
	if updated.AccountID != existing.AccountID {
		return nil, fmt.Errorf("%w: the owning account of a rule cannot change", apperrors.ErrValidation)
	}
	if err := s.validate(ctx, updated); err != nil {
		return nil, err
	}

	updated.RuleID = existing.RuleID
	updated.ExecutionCount = existing.ExecutionCount
	updated.TotalAmountProcessed = existing.TotalAmountProcessed
	updated.LastExecuted = existing.LastExecuted
	updated.AuditFields = existing.AuditFields
	updated.Touch(domain.SystemActor, s.now())

	if err := s.rules.UpdateRule(ctx, updated); err != nil {
		s.LogError(ctx, err, "Failed to update automation rule", slog.String("rule_id", ruleID))
		return nil, err
	}
	return &updated, nil
}

func (s *ruleService) ToggleRule(ctx context.Context, ruleID string) (*domain.AutomationRule, error) {
	rule, err := s.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	rule.IsActive = !rule.IsActive
	rule.Touch(domain.SystemActor, s.now())

	if err := s.rules.UpdateRule(ctx, *rule); err != nil {
		s.LogError(ctx, err, "Failed to toggle automation rule", slog.String("rule_id", ruleID))
		return nil, err
	}
	s.GetLogger(ctx).Info("Automation rule toggled",
		slog.String("rule_id", ruleID),
		slog.Bool("is_active", rule.IsActive))
	return rule, nil
}

func (s *ruleService) DeleteRule(ctx context.Context, ruleID string) error {
	if err := s.rules.DeleteRule(ctx, ruleID); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete automation rule", slog.String("rule_id", ruleID))
		}
		return err
	}
	return nil
}

// GetRuleStats combines the stored counters with today's and this month's
// executions read back from the ledger.
func (s *ruleService) GetRuleStats(ctx context.Context, ruleID string) (*domain.RuleStats, error) {
	rule, err := s.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	history, err := s.history(ctx, *rule, domain.StartOfMonth(now, s.loc))
	if err != nil {
		return nil, err
	}

	stats := &domain.RuleStats{
		RuleID:               rule.RuleID,
		ExecutionCount:       rule.ExecutionCount,
		TotalAmountProcessed: rule.TotalAmountProcessed,
		LastExecuted:         rule.LastExecuted,
		TodayAmount:          decimal.Zero,
		MonthAmount:          decimal.Zero,
	}
	startOfDay := domain.StartOfDay(now, s.loc)
	for _, t := range history {
		stats.MonthExecutions++
		stats.MonthAmount = stats.MonthAmount.Add(t.Amount)
		if !t.Timestamp.Before(startOfDay) {
			stats.TodayExecutions++
			stats.TodayAmount = stats.TodayAmount.Add(t.Amount)
		}
	}
	return stats, nil
}

func (s *ruleService) GetRuleHistory(ctx context.Context, ruleID string) ([]domain.Transaction, error) {
	rule, err := s.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	return s.history(ctx, *rule, time.Time{})
}

func (s *ruleService) history(ctx context.Context, rule domain.AutomationRule, from time.Time) ([]domain.Transaction, error) {
	txns, err := s.ledger.FindTransactions(ctx, ruleHistoryFilter(rule, from))
	if err != nil {
		s.LogError(ctx, err, "Failed to load automation rule history", slog.String("rule_id", rule.RuleID))
		return nil, err
	}
	return txns, nil
}

// validate checks the rule definition and that both accounts exist.
func (s *ruleService) validate(ctx context.Context, rule domain.AutomationRule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if s.accounts == nil {
		return nil
	}
	for _, id := range []string{rule.AccountID, rule.Action.TargetAccount} {
		if _, err := s.accounts.GetAccount(ctx, id); err != nil {
			if errors.Is(err, apperrors.ErrAccountNotFound) || errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: account '%s' does not exist", apperrors.ErrValidation, id)
			}
			return err
		}
	}
	return nil
}
