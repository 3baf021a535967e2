package models

import (
	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
// Custom limit columns are NULL when the global default applies.
type Account struct {
	AccountID              string              `db:"account_id"`
	Balance                decimal.Decimal     `db:"balance"`
	Currency               string              `db:"currency"`
	Status                 string              `db:"status"`
	DailyWithdrawalLimit   decimal.NullDecimal `db:"daily_withdrawal_limit"`
	DailyTransferLimit     decimal.NullDecimal `db:"daily_transfer_limit"`
	SingleTransactionLimit decimal.NullDecimal `db:"single_transaction_limit"`
	FeeWaivers             []string            `db:"fee_waivers"`
	Version                int64               `db:"version"`
	AuditFields
}
