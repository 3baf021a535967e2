package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/repositories/database/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRule(id, account string, active bool, created time.Time) domain.AutomationRule {
	return domain.AutomationRule{
		RuleID:      id,
		AccountID:   account,
		Name:        id,
		Type:        domain.RuleFixedTransfer,
		Trigger:     domain.TriggerOnDeposit,
		IsActive:    active,
		AuditFields: domain.AuditFields{CreatedAt: created},
	}
}

func TestRuleStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRuleStore()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRule(ctx, newRule("r1", "A", true, now)))
	assert.ErrorIs(t, store.SaveRule(ctx, newRule("r1", "A", true, now)), apperrors.ErrDuplicate)

	rule, err := store.FindRuleByID(ctx, "r1")
	require.NoError(t, err)
	rule.Name = "renamed"
	require.NoError(t, store.UpdateRule(ctx, *rule))

	rule, err = store.FindRuleByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", rule.Name)

	assert.ErrorIs(t, store.UpdateRule(ctx, newRule("ghost", "A", true, now)), apperrors.ErrNotFound)

	require.NoError(t, store.DeleteRule(ctx, "r1"))
	_, err = store.FindRuleByID(ctx, "r1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, store.DeleteRule(ctx, "r1"), apperrors.ErrNotFound)
}

func TestRuleStore_FindActiveRulesForAccounts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRuleStore()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRule(ctx, newRule("r2", "A", true, now.Add(time.Minute))))
	require.NoError(t, store.SaveRule(ctx, newRule("r1", "B", true, now)))
	require.NoError(t, store.SaveRule(ctx, newRule("r3", "A", false, now)))
	require.NoError(t, store.SaveRule(ctx, newRule("r4", "C", true, now)))

	rules, err := store.FindActiveRulesForAccounts(ctx, []string{"A", "B"})
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "r1", rules[0].RuleID, "oldest rule first")
	assert.Equal(t, "r2", rules[1].RuleID)

	all, err := store.ListRulesByAccount(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, all, 2, "listing includes inactive rules")
}

func TestRuleStore_IncrementStats(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRuleStore()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRule(ctx, newRule("r1", "A", true, now)))

	require.NoError(t, store.IncrementStats(ctx, "r1", decimal.NewFromInt(7), now))
	require.NoError(t, store.IncrementStats(ctx, "r1", decimal.RequireFromString("2.5"), now.Add(time.Hour)))

	rule, err := store.FindRuleByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rule.ExecutionCount)
	assert.True(t, rule.TotalAmountProcessed.Equal(decimal.RequireFromString("9.5")))
	require.NotNil(t, rule.LastExecuted)
	assert.True(t, rule.LastExecuted.Equal(now.Add(time.Hour)))

	assert.ErrorIs(t, store.IncrementStats(ctx, "ghost", decimal.NewFromInt(1), now), apperrors.ErrNotFound)
}
