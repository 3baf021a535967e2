package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// RuleEngine runs the automation rules of the accounts touched by a completed
// transaction. Rule failures are reported per rule and never affect the
// triggering transaction.
type RuleEngine struct {
	BaseService
	rules    portsrepo.RuleStore
	ledger   portsrepo.LedgerReader
	saga     *SagaOrchestrator
	maxDepth int
}

func NewRuleEngine(rules portsrepo.RuleStore, ledger portsrepo.LedgerReader, saga *SagaOrchestrator, maxDepth int, now domain.Clock, loc *time.Location) *RuleEngine {
	return &RuleEngine{
		BaseService: newBaseService(now, loc),
		rules:       rules,
		ledger:      ledger,
		saga:        saga,
		maxDepth:    maxDepth,
	}
}

// RunRules evaluates every active rule of tx's accounts and executes the matching
// ones. Only matched rules appear in the result. Transfers spawned by rules are
// fed back into the engine until the depth cap stops them.
func (e *RuleEngine) RunRules(ctx context.Context, tx domain.Transaction) []domain.RuleResult {
	if tx.Status != domain.StatusCompleted || tx.Depth >= e.maxDepth {
		return nil
	}
	logger := e.GetLogger(ctx).With(slog.String("transaction_id", tx.TransactionID))

	rules, err := e.rules.FindActiveRulesForAccounts(ctx, tx.AccountIDs())
	if err != nil {
		logger.Error("Failed to load automation rules", slog.String("error", err.Error()))
		return nil
	}

	var results []domain.RuleResult
	for _, rule := range rules {
		if !rule.Matches(tx, e.loc) {
			continue
		}
		result, spawned := e.execute(ctx, rule, tx)
		results = append(results, result)
		if spawned != nil {
			results = append(results, e.RunRules(ctx, *spawned)...)
		}
	}
	return results
}

func (e *RuleEngine) execute(ctx context.Context, rule domain.AutomationRule, tx domain.Transaction) (domain.RuleResult, *domain.Transaction) {
	logger := e.GetLogger(ctx).With(
		slog.String("rule_id", rule.RuleID),
		slog.String("transaction_id", tx.TransactionID))
	result := domain.RuleResult{RuleID: rule.RuleID, RuleName: rule.Name}

	amount := rule.CalculateAmount(tx)
	result.Amount = amount
	if !amount.IsPositive() {
		result.Reason = "calculated amount is zero"
		return result, nil
	}

	today, month, err := e.ruleTotals(ctx, rule)
	if err != nil {
		logger.Error("Failed to load automation rule totals", slog.String("error", err.Error()))
		result.Reason = err.Error()
		return result, nil
	}
	if exceeded, why := rule.ExceedsLimits(amount, today, month); exceeded {
		result.Reason = fmt.Errorf("%w: %s", apperrors.ErrRuleLimitExceeded, why).Error()
		return result, nil
	}

	sagaResult, err := e.saga.ExecuteSaga(ctx, e.secondaryTransfer(rule, tx, amount))
	if sagaResult != nil && sagaResult.Transaction != nil {
		result.Transaction = sagaResult.Transaction
	}
	if err != nil {
		logger.Warn("Automation rule transfer failed", slog.String("error", err.Error()))
		result.Reason = err.Error()
		return result, nil
	}
	result.Executed = true

	if err := e.rules.IncrementStats(ctx, rule.RuleID, amount, e.now().UTC()); err != nil {
		logger.Warn("Failed to update automation rule stats", slog.String("error", err.Error()))
	}
	logger.Info("Automation rule executed",
		slog.String("amount", amount.String()),
		slog.String("target_account", rule.Action.TargetAccount))
	return result, sagaResult.Transaction
}

func (e *RuleEngine) secondaryTransfer(rule domain.AutomationRule, tx domain.Transaction, amount decimal.Decimal) domain.Transaction {
	description := rule.Action.Description
	if description == "" {
		description = "Automation: " + rule.Name
	}
	ruleID := rule.RuleID
	triggeredBy := tx.TransactionID
	return domain.Transaction{
		Type:             domain.InternalTransfer,
		FromAccount:      rule.AccountID,
		ToAccount:        rule.Action.TargetAccount,
		Amount:           amount,
		Currency:         tx.Currency,
		Fees:             decimal.Zero,
		Commission:       decimal.Zero,
		Description:      description + " " + domain.RuleTag(ruleID),
		AutomationRuleID: &ruleID,
		TriggeredBy:      &triggeredBy,
		Depth:            tx.Depth + 1,
	}
}

// ruleTotals returns what the rule has already moved today and this month.
func (e *RuleEngine) ruleTotals(ctx context.Context, rule domain.AutomationRule) (decimal.Decimal, decimal.Decimal, error) {
	history, err := e.ruleHistory(ctx, rule, domain.StartOfMonth(e.Now(), e.loc))
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	startOfDay := domain.StartOfDay(e.Now(), e.loc)
	today, month := decimal.Zero, decimal.Zero
	for _, t := range history {
		month = month.Add(t.Amount)
		if !t.Timestamp.Before(startOfDay) {
			today = today.Add(t.Amount)
		}
	}
	return today, month, nil
}

// ruleHistory lists the completed transfers spawned by rule since from.
func (e *RuleEngine) ruleHistory(ctx context.Context, rule domain.AutomationRule, from time.Time) ([]domain.Transaction, error) {
	txns, err := e.ledger.FindTransactions(ctx, ruleHistoryFilter(rule, from))
	if err != nil {
		return nil, fmt.Errorf("failed to load history of rule %s: %w", rule.RuleID, err)
	}
	return txns, nil
}

// ruleHistoryFilter selects the completed transfers a rule spawned.
func ruleHistoryFilter(rule domain.AutomationRule, from time.Time) domain.TransactionFilter {
	return domain.TransactionFilter{
		AccountID:        rule.AccountID,
		OutgoingOnly:     true,
		Types:            []domain.TransactionType{domain.InternalTransfer},
		Statuses:         []domain.TransactionStatus{domain.StatusCompleted},
		From:             from,
		AutomationRuleID: rule.RuleID,
	}
}
