package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// AccountStatus is the lifecycle status of a bank account.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountFrozen    AccountStatus = "frozen"
	AccountSuspended AccountStatus = "suspended"
	AccountClosed    AccountStatus = "closed"
)

// IsBlocked reports whether the status forbids any money movement.
func (s AccountStatus) IsBlocked() bool {
	switch s {
	case AccountFrozen, AccountSuspended, AccountClosed:
		return true
	}
	return false
}

// CustomLimits are per-account overrides of the global ceilings.
// A nil field means the global default applies.
type CustomLimits struct {
	DailyWithdrawal   *decimal.Decimal `json:"dailyWithdrawal,omitempty"`
	DailyTransfer     *decimal.Decimal `json:"dailyTransfer,omitempty"`
	SingleTransaction *decimal.Decimal `json:"singleTransaction,omitempty"`
}

// Account is the balance-holding entity the transaction core moves money between.
// Balance is only mutated by saga debit and credit steps.
type Account struct {
	AccountID    string          `json:"accountId"`
	Balance      decimal.Decimal `json:"balance"`
	Currency     string          `json:"currency"`
	Status       AccountStatus   `json:"status"`
	CustomLimits *CustomLimits   `json:"customLimits,omitempty"`
	// FeeWaivers are the transaction types this account is not charged fees for.
	FeeWaivers []TransactionType `json:"feeWaivers,omitempty"`
	Version    int64             `json:"version"`
	AuditFields
}

// IsActive reports whether the account may take part in a transaction.
func (a Account) IsActive() bool {
	return a.Status == AccountActive
}

// WaivesFees reports whether a has a fee waiver for t.
func (a Account) WaivesFees(t TransactionType) bool {
	return slices.Contains(a.FeeWaivers, t)
}

// BalanceDirection selects whether ApplyBalanceDelta adds to or removes from a balance.
type BalanceDirection string

const (
	BalanceCredit BalanceDirection = "credit"
	BalanceDebit  BalanceDirection = "debit"
)
