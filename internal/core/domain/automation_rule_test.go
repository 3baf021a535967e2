package domain_test

import (
	"testing"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func intPtr(i int) *int {
	return &i
}

func TestAutomationRule_Trigger(t *testing.T) {
	// Sunday 10 March 2024
	ts := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		trigger domain.RuleTrigger
		tx      domain.Transaction
		want    bool
	}{
		{"deposit matches on_deposit", domain.TriggerOnDeposit, domain.Transaction{Type: domain.Deposit, ToAccount: "A"}, true},
		{"withdrawal does not match on_deposit", domain.TriggerOnDeposit, domain.Transaction{Type: domain.Withdrawal, FromAccount: "A"}, false},
		{"withdrawal matches on_withdrawal", domain.TriggerOnWithdrawal, domain.Transaction{Type: domain.Withdrawal, FromAccount: "A"}, true},
		{"incoming transfer matches on_transfer_in", domain.TriggerOnTransferIn, domain.Transaction{Type: domain.InternalTransfer, FromAccount: "X", ToAccount: "A"}, true},
		{"outgoing transfer does not match on_transfer_in", domain.TriggerOnTransferIn, domain.Transaction{Type: domain.InternalTransfer, FromAccount: "A", ToAccount: "X"}, false},
		{"outgoing interbank matches on_transfer_out", domain.TriggerOnTransferOut, domain.Transaction{Type: domain.InterbankTransfer, FromAccount: "A", ToAccount: "X"}, true},
		{"deposit does not match on_transfer_out", domain.TriggerOnTransferOut, domain.Transaction{Type: domain.Deposit, ToAccount: "A"}, false},
		{"anything matches on_any_transaction", domain.TriggerOnAnyTransaction, domain.Transaction{Type: domain.Withdrawal, FromAccount: "A"}, true},
		{"salary deposit", domain.TriggerOnSalary, domain.Transaction{Type: domain.Deposit, ToAccount: "A", Description: "Monthly SALAIRE March"}, true},
		{"paie deposit", domain.TriggerOnSalary, domain.Transaction{Type: domain.Deposit, ToAccount: "A", Description: "virement paie"}, true},
		{"plain deposit is not salary", domain.TriggerOnSalary, domain.Transaction{Type: domain.Deposit, ToAccount: "A", Description: "gift"}, false},
		{"salary transfer is not salary deposit", domain.TriggerOnSalary, domain.Transaction{Type: domain.InternalTransfer, FromAccount: "X", ToAccount: "A", Description: "salary"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := domain.AutomationRule{AccountID: "A", Trigger: tt.trigger}
			tt.tx.Amount = decimal.NewFromInt(50)
			tt.tx.Timestamp = ts
			assert.Equal(t, tt.want, rule.Matches(tt.tx, time.UTC))
		})
	}
}

func TestAutomationRule_Conditions(t *testing.T) {
	ts := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) // Sunday
	tx := domain.Transaction{
		Type:        domain.Deposit,
		ToAccount:   "A",
		Amount:      decimal.NewFromInt(500),
		Timestamp:   ts,
		Description: "Freelance invoice",
	}
	base := domain.AutomationRule{AccountID: "A", Trigger: domain.TriggerOnAnyTransaction}

	tests := []struct {
		name       string
		conditions domain.RuleConditions
		want       bool
	}{
		{"no conditions", domain.RuleConditions{}, true},
		{"min amount met", domain.RuleConditions{MinAmount: decimalPtr(decimal.NewFromInt(500))}, true},
		{"min amount not met", domain.RuleConditions{MinAmount: decimalPtr(decimal.NewFromInt(501))}, false},
		{"max amount exceeded", domain.RuleConditions{MaxAmount: decimalPtr(decimal.NewFromInt(499))}, false},
		{"type allowed", domain.RuleConditions{TransactionTypes: []domain.TransactionType{domain.Deposit}}, true},
		{"type not allowed", domain.RuleConditions{TransactionTypes: []domain.TransactionType{domain.Withdrawal}}, false},
		{"description case-insensitive", domain.RuleConditions{DescriptionContains: "INVOICE"}, true},
		{"description missing", domain.RuleConditions{DescriptionContains: "rent"}, false},
		{"day of month", domain.RuleConditions{DayOfMonth: intPtr(10)}, true},
		{"wrong day of month", domain.RuleConditions{DayOfMonth: intPtr(11)}, false},
		{"sunday is zero", domain.RuleConditions{DayOfWeek: intPtr(0)}, true},
		{"wrong weekday", domain.RuleConditions{DayOfWeek: intPtr(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := base
			rule.Conditions = tt.conditions
			assert.Equal(t, tt.want, rule.Matches(tx, time.UTC))
		})
	}
}

func TestAutomationRule_CalculateAmount(t *testing.T) {
	tests := []struct {
		name   string
		rule   domain.AutomationRule
		amount decimal.Decimal
		want   string
	}{
		{
			name:   "save ten percent",
			rule:   domain.AutomationRule{Type: domain.RuleSavePercentage, Action: domain.RuleAction{Percentage: decimalPtr(decimal.NewFromInt(10))}},
			amount: decimal.NewFromInt(1000),
			want:   "100",
		},
		{
			name:   "round up to ten",
			rule:   domain.AutomationRule{Type: domain.RuleRoundUp, Action: domain.RuleAction{RoundUpTo: decimalPtr(decimal.NewFromInt(10))}},
			amount: decimal.NewFromInt(73),
			want:   "7",
		},
		{
			name:   "round up on exact multiple",
			rule:   domain.AutomationRule{Type: domain.RuleRoundUp, Action: domain.RuleAction{RoundUpTo: decimalPtr(decimal.NewFromInt(10))}},
			amount: decimal.NewFromInt(70),
			want:   "0",
		},
		{
			name:   "round up with cents",
			rule:   domain.AutomationRule{Type: domain.RuleRoundUp, Action: domain.RuleAction{RoundUpTo: decimalPtr(decimal.NewFromInt(1))}},
			amount: decimal.RequireFromString("12.35"),
			want:   "0.65",
		},
		{
			name:   "fixed transfer",
			rule:   domain.AutomationRule{Type: domain.RuleFixedTransfer, Action: domain.RuleAction{FixedAmount: decimalPtr(decimal.NewFromInt(25))}},
			amount: decimal.NewFromInt(1),
			want:   "25",
		},
		{
			name:   "auto invest prefers percentage",
			rule:   domain.AutomationRule{Type: domain.RuleAutoInvest, Action: domain.RuleAction{Percentage: decimalPtr(decimal.NewFromInt(5)), FixedAmount: decimalPtr(decimal.NewFromInt(99))}},
			amount: decimal.NewFromInt(200),
			want:   "10",
		},
		{
			name:   "auto invest falls back to fixed",
			rule:   domain.AutomationRule{Type: domain.RuleAutoInvest, Action: domain.RuleAction{FixedAmount: decimalPtr(decimal.NewFromInt(40))}},
			amount: decimal.NewFromInt(200),
			want:   "40",
		},
		{
			name:   "missing percentage yields zero",
			rule:   domain.AutomationRule{Type: domain.RuleSavePercentage},
			amount: decimal.NewFromInt(200),
			want:   "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.rule.CalculateAmount(domain.Transaction{Amount: tt.amount})
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestAutomationRule_ExceedsLimits(t *testing.T) {
	rule := domain.AutomationRule{Limits: domain.RuleLimits{
		MaxPerTransaction: decimalPtr(decimal.NewFromInt(50)),
		MaxPerDay:         decimalPtr(decimal.NewFromInt(100)),
		MaxPerMonth:       decimalPtr(decimal.NewFromInt(300)),
	}}

	exceeded, _ := rule.ExceedsLimits(decimal.NewFromInt(50), decimal.NewFromInt(50), decimal.NewFromInt(250))
	assert.False(t, exceeded)

	exceeded, reason := rule.ExceedsLimits(decimal.NewFromInt(51), decimal.Zero, decimal.Zero)
	assert.True(t, exceeded)
	assert.Contains(t, reason, "per transaction")

	exceeded, reason = rule.ExceedsLimits(decimal.NewFromInt(10), decimal.NewFromInt(95), decimal.Zero)
	assert.True(t, exceeded)
	assert.Contains(t, reason, "daily")

	exceeded, reason = rule.ExceedsLimits(decimal.NewFromInt(10), decimal.Zero, decimal.NewFromInt(295))
	assert.True(t, exceeded)
	assert.Contains(t, reason, "monthly")
}

func TestAutomationRule_Validate(t *testing.T) {
	valid := domain.AutomationRule{
		AccountID: "A",
		Name:      "Save",
		Type:      domain.RuleSavePercentage,
		Trigger:   domain.TriggerOnDeposit,
		Action:    domain.RuleAction{TargetAccount: "B", Percentage: decimalPtr(decimal.NewFromInt(10))},
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *domain.AutomationRule)
	}{
		{"missing account", func(r *domain.AutomationRule) { r.AccountID = "" }},
		{"missing name", func(r *domain.AutomationRule) { r.Name = "" }},
		{"bad type", func(r *domain.AutomationRule) { r.Type = "lottery" }},
		{"bad trigger", func(r *domain.AutomationRule) { r.Trigger = "on_birthday" }},
		{"missing target", func(r *domain.AutomationRule) { r.Action.TargetAccount = "" }},
		{"target equals source", func(r *domain.AutomationRule) { r.Action.TargetAccount = "A" }},
		{"missing percentage", func(r *domain.AutomationRule) { r.Action.Percentage = nil }},
		{"percentage above 100", func(r *domain.AutomationRule) { r.Action.Percentage = decimalPtr(decimal.NewFromInt(101)) }},
		{"negative fixed amount", func(r *domain.AutomationRule) {
			r.Type = domain.RuleFixedTransfer
			r.Action.FixedAmount = decimalPtr(decimal.NewFromInt(-5))
		}},
		{"sub-cent fixed amount", func(r *domain.AutomationRule) {
			r.Type = domain.RuleFixedTransfer
			r.Action.FixedAmount = decimalPtr(decimal.RequireFromString("2.505"))
		}},
		{"round up without step", func(r *domain.AutomationRule) { r.Type = domain.RuleRoundUp }},
		{"weekday out of range", func(r *domain.AutomationRule) { r.Conditions.DayOfWeek = intPtr(7) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}
