package dto

import (
	"strings"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AutomationRuleRequest defines the data needed to create or replace an automation rule.
// Type-specific requirements are enforced by domain.AutomationRule.Validate.
type AutomationRuleRequest struct {
	AccountID   string                `json:"accountId" binding:"required"`
	Name        string                `json:"name" binding:"required,max=100"`
	Description string                `json:"description" binding:"max=255"`
	Type        domain.RuleType       `json:"type" binding:"required,ruletype"`
	Trigger     domain.RuleTrigger    `json:"trigger" binding:"required,ruletrigger"`
	Conditions  domain.RuleConditions `json:"conditions"`
	Action      RuleActionRequest     `json:"action" binding:"required"`
	Limits      RuleLimitsRequest     `json:"limits"`
	IsActive    *bool                 `json:"isActive"`
}

// RuleActionRequest mirrors domain.RuleAction with input validation.
type RuleActionRequest struct {
	TargetAccount string           `json:"targetAccount" binding:"required"`
	Percentage    *decimal.Decimal `json:"percentage" binding:"omitempty,gte=0,lte=100"`
	FixedAmount   *decimal.Decimal `json:"fixedAmount" binding:"omitempty,gte=0"`
	RoundUpTo     *decimal.Decimal `json:"roundUpTo" binding:"omitempty,gt=0"`
	Description   string           `json:"description" binding:"max=255"`
}

// RuleLimitsRequest mirrors domain.RuleLimits with input validation.
type RuleLimitsRequest struct {
	MaxPerTransaction *decimal.Decimal `json:"maxPerTransaction" binding:"omitempty,gt=0"`
	MaxPerDay         *decimal.Decimal `json:"maxPerDay" binding:"omitempty,gt=0"`
	MaxPerMonth       *decimal.Decimal `json:"maxPerMonth" binding:"omitempty,gt=0"`
}

// ToDomain converts the request into a rule without identity or audit fields.
func (r AutomationRuleRequest) ToDomain() domain.AutomationRule {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return domain.AutomationRule{
		AccountID:   strings.TrimSpace(r.AccountID),
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		Type:        r.Type,
		Trigger:     r.Trigger,
		Conditions:  r.Conditions,
		Action: domain.RuleAction{
			TargetAccount: strings.TrimSpace(r.Action.TargetAccount),
			Percentage:    r.Action.Percentage,
			FixedAmount:   r.Action.FixedAmount,
			RoundUpTo:     r.Action.RoundUpTo,
			Description:   r.Action.Description,
		},
		Limits: domain.RuleLimits{
			MaxPerTransaction: r.Limits.MaxPerTransaction,
			MaxPerDay:         r.Limits.MaxPerDay,
			MaxPerMonth:       r.Limits.MaxPerMonth,
		},
		IsActive: active,
	}
}

// RuleResponse carries a single rule.
type RuleResponse struct {
	Success bool                   `json:"success"`
	Rule    *domain.AutomationRule `json:"rule"`
}

// ListRulesResponse carries the rules of an account.
type ListRulesResponse struct {
	Success bool                    `json:"success"`
	Count   int                     `json:"count"`
	Rules   []domain.AutomationRule `json:"rules"`
}

// RuleStatsResponse carries a rule's execution statistics.
type RuleStatsResponse struct {
	Success bool              `json:"success"`
	Stats   *domain.RuleStats `json:"stats"`
}

// RuleHistoryResponse carries the transfers a rule has performed.
type RuleHistoryResponse struct {
	Success      bool                 `json:"success"`
	Count        int                  `json:"count"`
	Transactions []domain.Transaction `json:"transactions"`
}
