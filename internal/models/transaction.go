package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the ledger table.
// Empty account references are stored as NULL.
type Transaction struct {
	TransactionID    string          `db:"transaction_id"`
	Type             string          `db:"type"`
	FromAccount      sql.NullString  `db:"from_account"`
	ToAccount        sql.NullString  `db:"to_account"`
	Amount           decimal.Decimal `db:"amount"`
	Currency         string          `db:"currency"`
	Fees             decimal.Decimal `db:"fees"`
	Commission       decimal.Decimal `db:"commission"`
	Status           string          `db:"status"`
	Timestamp        time.Time       `db:"timestamp"`
	Description      string          `db:"description"`
	SecurityLevel    string          `db:"security_level"`
	FraudFlag        bool            `db:"fraud_flag"`
	FraudFlags       []string        `db:"fraud_flags"`
	CategoryID       sql.NullString  `db:"category_id"`
	CategoryName     sql.NullString  `db:"category_name"`
	Reference        sql.NullString  `db:"reference"`
	AutomationRuleID sql.NullString  `db:"automation_rule_id"`
	TriggeredBy      sql.NullString  `db:"triggered_by"`
	Depth            int             `db:"depth"`
}
