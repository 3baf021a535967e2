package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/models"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const ruleColumns = `rule_id, account_id, name, description, type, trigger, conditions, action, limits, is_active,
	execution_count, total_amount_processed, last_executed, created_at, created_by, last_updated_at, last_updated_by`

type PgxRuleRepository struct {
	BaseRepository
}

func newPgxRuleRepository(pool DBPool) *PgxRuleRepository {
	return &PgxRuleRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxRuleRepository implements portsrepo.RuleStore
var _ portsrepo.RuleStore = (*PgxRuleRepository)(nil)

func scanRule(row pgx.Row) (*domain.AutomationRule, error) {
	var m models.AutomationRule
	err := row.Scan(
		&m.RuleID,
		&m.AccountID,
		&m.Name,
		&m.Description,
		&m.Type,
		&m.Trigger,
		&m.Conditions,
		&m.Action,
		&m.Limits,
		&m.IsActive,
		&m.ExecutionCount,
		&m.TotalAmountProcessed,
		&m.LastExecuted,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	rule, err := mapping.ToDomainAutomationRule(m)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *PgxRuleRepository) queryRules(ctx context.Context, query string, args ...any) ([]domain.AutomationRule, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query automation rules: %w", err)
	}
	defer rows.Close()

	rules := make([]domain.AutomationRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automation rule row: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating automation rule rows: %w", err)
	}
	return rules, nil
}

func (r *PgxRuleRepository) SaveRule(ctx context.Context, rule domain.AutomationRule) error {
	m, err := mapping.ToModelAutomationRule(rule)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO automation_rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err = r.Pool.Exec(ctx, query,
		m.RuleID,
		m.AccountID,
		m.Name,
		m.Description,
		m.Type,
		m.Trigger,
		m.Conditions,
		m.Action,
		m.Limits,
		m.IsActive,
		m.ExecutionCount,
		m.TotalAmountProcessed,
		m.LastExecuted,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: automation rule %s", apperrors.ErrDuplicate, rule.RuleID)
		}
		return fmt.Errorf("failed to save automation rule %s: %w", rule.RuleID, err)
	}
	return nil
}

// UpdateRule rewrites the definition columns. Execution counters are left alone.
func (r *PgxRuleRepository) UpdateRule(ctx context.Context, rule domain.AutomationRule) error {
	m, err := mapping.ToModelAutomationRule(rule)
	if err != nil {
		return err
	}

	query := `
		UPDATE automation_rules
		SET name = $2, description = $3, type = $4, trigger = $5, conditions = $6, action = $7, limits = $8,
			is_active = $9, last_updated_at = $10, last_updated_by = $11
		WHERE rule_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.RuleID,
		m.Name,
		m.Description,
		m.Type,
		m.Trigger,
		m.Conditions,
		m.Action,
		m.Limits,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update automation rule %s: %w", rule.RuleID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: rule %s", apperrors.ErrNotFound, rule.RuleID)
	}
	return nil
}

func (r *PgxRuleRepository) DeleteRule(ctx context.Context, ruleID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM automation_rules WHERE rule_id = $1;`, ruleID)
	if err != nil {
		return fmt.Errorf("failed to delete automation rule %s: %w", ruleID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: rule %s", apperrors.ErrNotFound, ruleID)
	}
	return nil
}

func (r *PgxRuleRepository) IncrementStats(ctx context.Context, ruleID string, amount decimal.Decimal, executedAt time.Time) error {
	query := `
		UPDATE automation_rules
		SET execution_count = execution_count + 1,
			total_amount_processed = total_amount_processed + $2,
			last_executed = $3
		WHERE rule_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, ruleID, amount, executedAt)
	if err != nil {
		return fmt.Errorf("failed to record execution of automation rule %s: %w", ruleID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: rule %s", apperrors.ErrNotFound, ruleID)
	}
	return nil
}

func (r *PgxRuleRepository) FindRuleByID(ctx context.Context, ruleID string) (*domain.AutomationRule, error) {
	rule, err := scanRule(r.Pool.QueryRow(ctx, `SELECT `+ruleColumns+` FROM automation_rules WHERE rule_id = $1;`, ruleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: rule %s", apperrors.ErrNotFound, ruleID)
		}
		return nil, fmt.Errorf("failed to find automation rule %s: %w", ruleID, err)
	}
	return rule, nil
}

func (r *PgxRuleRepository) ListRulesByAccount(ctx context.Context, accountID string) ([]domain.AutomationRule, error) {
	return r.queryRules(ctx,
		`SELECT `+ruleColumns+` FROM automation_rules WHERE account_id = $1 ORDER BY created_at, rule_id;`,
		accountID)
}

func (r *PgxRuleRepository) FindActiveRulesForAccounts(ctx context.Context, accountIDs []string) ([]domain.AutomationRule, error) {
	if len(accountIDs) == 0 {
		return []domain.AutomationRule{}, nil
	}
	return r.queryRules(ctx,
		`SELECT `+ruleColumns+` FROM automation_rules WHERE account_id = ANY($1) AND is_active ORDER BY created_at, rule_id;`,
		accountIDs)
}
