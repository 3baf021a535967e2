package domain

import "github.com/shopspring/decimal"

// LimitClass groups transaction types that share a daily ceiling.
type LimitClass string

const (
	LimitClassWithdrawal LimitClass = "withdrawal"
	LimitClassTransfer   LimitClass = "transfer"
)

// LimitClassOf returns the daily-ceiling class of t, or "" when t is not limited.
func LimitClassOf(t TransactionType) LimitClass {
	switch {
	case t == Withdrawal:
		return LimitClassWithdrawal
	case t.IsTransfer():
		return LimitClassTransfer
	}
	return ""
}

// Types returns the transaction types counted against the class.
func (c LimitClass) Types() []TransactionType {
	switch c {
	case LimitClassWithdrawal:
		return []TransactionType{Withdrawal}
	case LimitClassTransfer:
		return []TransactionType{InternalTransfer, InterbankTransfer}
	}
	return nil
}

// LimitUsage is how much of a daily ceiling an account has consumed today.
type LimitUsage struct {
	Used      decimal.Decimal `json:"used"`
	Limit     decimal.Decimal `json:"limit"`
	Remaining decimal.Decimal `json:"remaining"`
}

// AccountLimits is the limit overview for one account.
type AccountLimits struct {
	AccountID         string          `json:"accountId"`
	DailyWithdrawal   LimitUsage      `json:"dailyWithdrawal"`
	DailyTransfer     LimitUsage      `json:"dailyTransfer"`
	SingleTransaction decimal.Decimal `json:"singleTransaction"`
	MinTransaction    decimal.Decimal `json:"minTransaction"`
	MinBalance        decimal.Decimal `json:"minBalance"`
	CustomLimits      *CustomLimits   `json:"customLimits,omitempty"`
}
