package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// RuleType selects how an automation rule computes its transfer amount.
type RuleType string

const (
	RuleSavePercentage      RuleType = "save_percentage"
	RuleRoundUp             RuleType = "round_up"
	RuleFixedTransfer       RuleType = "fixed_transfer"
	RuleConditionalTransfer RuleType = "conditional_transfer"
	RuleAutoInvest          RuleType = "auto_invest"
)

// IsValid reports whether t is a known rule type.
func (t RuleType) IsValid() bool {
	switch t {
	case RuleSavePercentage, RuleRoundUp, RuleFixedTransfer, RuleConditionalTransfer, RuleAutoInvest:
		return true
	}
	return false
}

// RuleTrigger selects which transactions an automation rule reacts to.
type RuleTrigger string

const (
	TriggerOnDeposit        RuleTrigger = "on_deposit"
	TriggerOnWithdrawal     RuleTrigger = "on_withdrawal"
	TriggerOnTransferIn     RuleTrigger = "on_transfer_in"
	TriggerOnTransferOut    RuleTrigger = "on_transfer_out"
	TriggerOnAnyTransaction RuleTrigger = "on_any_transaction"
	TriggerOnSalary         RuleTrigger = "on_salary"
)

// IsValid reports whether t is a known trigger.
func (t RuleTrigger) IsValid() bool {
	switch t {
	case TriggerOnDeposit, TriggerOnWithdrawal, TriggerOnTransferIn, TriggerOnTransferOut, TriggerOnAnyTransaction, TriggerOnSalary:
		return true
	}
	return false
}

var salaryKeywords = []string{"salary", "salaire", "paie"}

// RuleConditions must all hold for a triggered rule to execute.
type RuleConditions struct {
	MinAmount           *decimal.Decimal  `json:"minAmount,omitempty"`
	MaxAmount           *decimal.Decimal  `json:"maxAmount,omitempty"`
	TransactionTypes    []TransactionType `json:"transactionTypes,omitempty"`
	DescriptionContains string            `json:"descriptionContains,omitempty"`
	DayOfMonth          *int              `json:"dayOfMonth,omitempty"`
	// DayOfWeek uses time.Weekday numbering, 0 is Sunday.
	DayOfWeek *int `json:"dayOfWeek,omitempty"`
}

// RuleAction describes the secondary transfer a rule performs.
type RuleAction struct {
	TargetAccount string           `json:"targetAccount"`
	Percentage    *decimal.Decimal `json:"percentage,omitempty"`
	FixedAmount   *decimal.Decimal `json:"fixedAmount,omitempty"`
	RoundUpTo     *decimal.Decimal `json:"roundUpTo,omitempty"`
	Description   string           `json:"description,omitempty"`
}

// RuleLimits cap how much a rule may move.
type RuleLimits struct {
	MaxPerTransaction *decimal.Decimal `json:"maxPerTransaction,omitempty"`
	MaxPerDay         *decimal.Decimal `json:"maxPerDay,omitempty"`
	MaxPerMonth       *decimal.Decimal `json:"maxPerMonth,omitempty"`
}

// AutomationRule reacts to completed transactions on AccountID by moving money
// from AccountID to Action.TargetAccount.
type AutomationRule struct {
	RuleID               string          `json:"ruleId"`
	AccountID            string          `json:"accountId"`
	Name                 string          `json:"name"`
	Description          string          `json:"description,omitempty"`
	Type                 RuleType        `json:"type"`
	Trigger              RuleTrigger     `json:"trigger"`
	Conditions           RuleConditions  `json:"conditions"`
	Action               RuleAction      `json:"action"`
	Limits               RuleLimits      `json:"limits"`
	IsActive             bool            `json:"isActive"`
	ExecutionCount       int64           `json:"executionCount"`
	TotalAmountProcessed decimal.Decimal `json:"totalAmountProcessed"`
	LastExecuted         *time.Time      `json:"lastExecuted,omitempty"`
	AuditFields
}

// RuleTag is appended to the description of every rule-spawned transfer so
// statements show which rule moved the money.
func RuleTag(ruleID string) string {
	return "[rule:" + ruleID + "]"
}

// Matches reports whether the rule's trigger and all of its conditions hold for tx.
// Day conditions are evaluated in loc.
func (r AutomationRule) Matches(tx Transaction, loc *time.Location) bool {
	if !r.triggeredBy(tx) {
		return false
	}

	c := r.Conditions
	if c.MinAmount != nil && tx.Amount.LessThan(*c.MinAmount) {
		return false
	}
	if c.MaxAmount != nil && tx.Amount.GreaterThan(*c.MaxAmount) {
		return false
	}
	if len(c.TransactionTypes) > 0 && !slices.Contains(c.TransactionTypes, tx.Type) {
		return false
	}
	if c.DescriptionContains != "" && !containsFold(tx.Description, c.DescriptionContains) {
		return false
	}
	if loc == nil {
		loc = time.UTC
	}
	at := tx.Timestamp.In(loc)
	if c.DayOfMonth != nil && at.Day() != *c.DayOfMonth {
		return false
	}
	if c.DayOfWeek != nil && int(at.Weekday()) != *c.DayOfWeek {
		return false
	}
	return true
}

func (r AutomationRule) triggeredBy(tx Transaction) bool {
	switch r.Trigger {
	case TriggerOnDeposit:
		return tx.Type == Deposit
	case TriggerOnWithdrawal:
		return tx.Type == Withdrawal
	case TriggerOnTransferIn:
		return tx.Type.IsTransfer() && tx.ToAccount == r.AccountID
	case TriggerOnTransferOut:
		return tx.Type.IsTransfer() && tx.FromAccount == r.AccountID
	case TriggerOnAnyTransaction:
		return true
	case TriggerOnSalary:
		if tx.Type != Deposit {
			return false
		}
		for _, kw := range salaryKeywords {
			if containsFold(tx.Description, kw) {
				return true
			}
		}
	}
	return false
}

// CalculateAmount returns the amount the rule would move for tx, rounded to cents.
// A non-positive result means the rule should be skipped.
func (r AutomationRule) CalculateAmount(tx Transaction) decimal.Decimal {
	var amount decimal.Decimal
	switch r.Type {
	case RuleSavePercentage:
		if r.Action.Percentage != nil {
			amount = percentOf(tx.Amount, *r.Action.Percentage)
		}
	case RuleFixedTransfer, RuleConditionalTransfer:
		if r.Action.FixedAmount != nil {
			amount = *r.Action.FixedAmount
		}
	case RuleRoundUp:
		if r.Action.RoundUpTo != nil && r.Action.RoundUpTo.IsPositive() {
			step := *r.Action.RoundUpTo
			amount = tx.Amount.Div(step).Ceil().Mul(step).Sub(tx.Amount)
		}
	case RuleAutoInvest:
		if r.Action.Percentage != nil {
			amount = percentOf(tx.Amount, *r.Action.Percentage)
		} else if r.Action.FixedAmount != nil {
			amount = *r.Action.FixedAmount
		}
	}
	return amount.Round(2)
}

// ExceedsLimits reports which rule limit, if any, moving amount would break given
// the rule's totals already moved today and this month.
func (r AutomationRule) ExceedsLimits(amount, today, month decimal.Decimal) (bool, string) {
	if l := r.Limits.MaxPerTransaction; l != nil && amount.GreaterThan(*l) {
		return true, fmt.Sprintf("amount %s exceeds max per transaction %s", amount.StringFixed(2), l.StringFixed(2))
	}
	if l := r.Limits.MaxPerDay; l != nil && today.Add(amount).GreaterThan(*l) {
		return true, fmt.Sprintf("daily total would exceed %s", l.StringFixed(2))
	}
	if l := r.Limits.MaxPerMonth; l != nil && month.Add(amount).GreaterThan(*l) {
		return true, fmt.Sprintf("monthly total would exceed %s", l.StringFixed(2))
	}
	return false, ""
}

// Validate checks a rule definition before it is stored.
func (r AutomationRule) Validate() error {
	if r.AccountID == "" {
		return fmt.Errorf("accountId is required")
	}
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !r.Type.IsValid() {
		return fmt.Errorf("invalid rule type '%s'", r.Type)
	}
	if !r.Trigger.IsValid() {
		return fmt.Errorf("invalid trigger '%s'", r.Trigger)
	}
	if r.Action.TargetAccount == "" {
		return fmt.Errorf("action.targetAccount is required")
	}
	if r.Action.TargetAccount == r.AccountID {
		return fmt.Errorf("source and target accounts must differ")
	}

	switch r.Type {
	case RuleSavePercentage:
		if r.Action.Percentage == nil {
			return fmt.Errorf("action.percentage is required for %s", r.Type)
		}
	case RuleFixedTransfer, RuleConditionalTransfer:
		if r.Action.FixedAmount == nil {
			return fmt.Errorf("action.fixedAmount is required for %s", r.Type)
		}
	case RuleRoundUp:
		if r.Action.RoundUpTo == nil || !r.Action.RoundUpTo.IsPositive() {
			return fmt.Errorf("action.roundUpTo must be greater than zero for %s", r.Type)
		}
	case RuleAutoInvest:
		if r.Action.Percentage == nil && r.Action.FixedAmount == nil {
			return fmt.Errorf("action.percentage or action.fixedAmount is required for %s", r.Type)
		}
	}

	hundred := decimal.NewFromInt(100)
	if p := r.Action.Percentage; p != nil && (p.IsNegative() || p.GreaterThan(hundred)) {
		return fmt.Errorf("action.percentage must be between 0 and 100")
	}
	if f := r.Action.FixedAmount; f != nil && f.IsNegative() {
		return fmt.Errorf("action.fixedAmount cannot be negative")
	}
	if f := r.Action.FixedAmount; f != nil && !IsMoneyAmount(*f) {
		return fmt.Errorf("action.fixedAmount cannot have more than %d decimal places", MoneyScale)
	}
	if d := r.Conditions.DayOfMonth; d != nil && (*d < 1 || *d > 31) {
		return fmt.Errorf("conditions.dayOfMonth must be between 1 and 31")
	}
	if d := r.Conditions.DayOfWeek; d != nil && (*d < 0 || *d > 6) {
		return fmt.Errorf("conditions.dayOfWeek must be between 0 and 6")
	}
	for _, t := range r.Conditions.TransactionTypes {
		if !t.IsValid() {
			return fmt.Errorf("conditions.transactionTypes contains unknown type '%s'", t)
		}
	}
	return nil
}

// RuleResult reports what the engine did with one rule for one transaction.
type RuleResult struct {
	RuleID      string          `json:"ruleId"`
	RuleName    string          `json:"ruleName"`
	Executed    bool            `json:"executed"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason,omitempty"`
	Transaction *Transaction    `json:"transaction,omitempty"`
}

// RuleStats summarises a rule's executions for today and the current month.
type RuleStats struct {
	RuleID               string          `json:"ruleId"`
	ExecutionCount       int64           `json:"executionCount"`
	TotalAmountProcessed decimal.Decimal `json:"totalAmountProcessed"`
	LastExecuted         *time.Time      `json:"lastExecuted,omitempty"`
	TodayExecutions      int             `json:"todayExecutions"`
	TodayAmount          decimal.Decimal `json:"todayAmount"`
	MonthExecutions      int             `json:"monthExecutions"`
	MonthAmount          decimal.Decimal `json:"monthAmount"`
}

func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(decimal.NewFromInt(100))
}
