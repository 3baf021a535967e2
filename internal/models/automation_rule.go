package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// AutomationRule is a row of the automation_rules table. Conditions, action and
// limits are stored as JSONB documents.
type AutomationRule struct {
	RuleID               string          `db:"rule_id"`
	AccountID            string          `db:"account_id"`
	Name                 string          `db:"name"`
	Description          string          `db:"description"`
	Type                 string          `db:"type"`
	Trigger              string          `db:"trigger"`
	Conditions           []byte          `db:"conditions"`
	Action               []byte          `db:"action"`
	Limits               []byte          `db:"limits"`
	IsActive             bool            `db:"is_active"`
	ExecutionCount       int64           `db:"execution_count"`
	TotalAmountProcessed decimal.Decimal `db:"total_amount_processed"`
	LastExecuted         sql.NullTime    `db:"last_executed"`
	AuditFields
}
