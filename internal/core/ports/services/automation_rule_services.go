package services

import (
	"context"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/dto"
)

// RuleReaderSvc defines read operations for automation rules
type RuleReaderSvc interface {
	GetRule(ctx context.Context, ruleID string) (*domain.AutomationRule, error)
	ListRulesByAccount(ctx context.Context, accountID string) ([]domain.AutomationRule, error)
	GetRuleStats(ctx context.Context, ruleID string) (*domain.RuleStats, error)
	GetRuleHistory(ctx context.Context, ruleID string) ([]domain.Transaction, error)
}

// RuleWriterSvc defines write operations for automation rules
type RuleWriterSvc interface {
	CreateRule(ctx context.Context, req dto.AutomationRuleRequest) (*domain.AutomationRule, error)
	UpdateRule(ctx context.Context, ruleID string, req dto.AutomationRuleRequest) (*domain.AutomationRule, error)
	ToggleRule(ctx context.Context, ruleID string) (*domain.AutomationRule, error)
	DeleteRule(ctx context.Context, ruleID string) error
}

// RuleSvcFacade combines all automation rule service interfaces
type RuleSvcFacade interface {
	RuleReaderSvc
	RuleWriterSvc
}
