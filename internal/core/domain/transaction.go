package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of money movement requested.
type TransactionType string

const (
	Deposit           TransactionType = "deposit"
	Withdrawal        TransactionType = "withdrawal"
	InternalTransfer  TransactionType = "internal_transfer"
	InterbankTransfer TransactionType = "interbank_transfer"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	switch t {
	case Deposit, Withdrawal, InternalTransfer, InterbankTransfer:
		return true
	}
	return false
}

// Debits reports whether the type removes money from a source account.
func (t TransactionType) Debits() bool {
	return t == Withdrawal || t.IsTransfer()
}

// Credits reports whether the type adds money to a destination account.
func (t TransactionType) Credits() bool {
	return t == Deposit || t.IsTransfer()
}

// IsTransfer reports whether the type moves money between two accounts.
func (t TransactionType) IsTransfer() bool {
	return t == InternalTransfer || t == InterbankTransfer
}

// TransactionStatus is the ledger status of a transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusReversed  TransactionStatus = "reversed"
	// StatusReversing claims a completed transaction while its mirror runs.
	StatusReversing TransactionStatus = "reversing"
)

// CanTransitionTo reports whether the ledger may move a transaction from s to next.
// pending settles exactly once. A completed transaction is claimed as reversing
// before its mirror runs; the claim settles as reversed or is released back to
// completed.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusCompleted || next == StatusFailed
	case StatusCompleted:
		return next == StatusReversing || next == StatusReversed
	case StatusReversing:
		return next == StatusReversed || next == StatusCompleted
	}
	return false
}

// SecurityLevel is the fraud scorer's verdict.
type SecurityLevel string

const (
	SecurityLow    SecurityLevel = "low"
	SecurityMedium SecurityLevel = "medium"
	SecurityHigh   SecurityLevel = "high"
)

// Transaction is a ledger entry for a single money movement.
type Transaction struct {
	TransactionID    string            `json:"transactionId"`
	Type             TransactionType   `json:"type"`
	FromAccount      string            `json:"fromAccount,omitempty"`
	ToAccount        string            `json:"toAccount,omitempty"`
	Amount           decimal.Decimal   `json:"amount"`
	Currency         string            `json:"currency"`
	Fees             decimal.Decimal   `json:"fees"`
	Commission       decimal.Decimal   `json:"commission"`
	Status           TransactionStatus `json:"status"`
	Timestamp        time.Time         `json:"timestamp"`
	Description      string            `json:"description"`
	SecurityLevel    SecurityLevel     `json:"securityLevel"`
	FraudFlag        bool              `json:"fraudFlag"`
	FraudFlags       []string          `json:"fraudFlags,omitempty"`
	CategoryID       *string           `json:"categoryId,omitempty"`
	CategoryName     *string           `json:"categoryName,omitempty"`
	Reference        *string           `json:"reference,omitempty"`
	AutomationRuleID *string           `json:"automationRuleId,omitempty"`
	TriggeredBy      *string           `json:"triggeredBy,omitempty"`
	// Depth counts how many automation hops produced this transaction. User requests are 0.
	Depth int `json:"depth"`
}

// TotalDebit is what the source account pays: amount plus fees.
func (t Transaction) TotalDebit() decimal.Decimal {
	return t.Amount.Add(t.Fees)
}

// AccountIDs returns the distinct, non-empty account references of the transaction.
func (t Transaction) AccountIDs() []string {
	ids := make([]string, 0, 2)
	if t.FromAccount != "" {
		ids = append(ids, t.FromAccount)
	}
	if t.ToAccount != "" && t.ToAccount != t.FromAccount {
		ids = append(ids, t.ToAccount)
	}
	return ids
}

// Touches reports whether accountID is either side of the transaction.
func (t Transaction) Touches(accountID string) bool {
	return accountID != "" && (t.FromAccount == accountID || t.ToAccount == accountID)
}

// Validate checks the shape of a transaction request independent of any stored state.
func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return fmt.Errorf("unknown transaction type '%s'", t.Type)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("amount must be greater than zero")
	}
	if !IsMoneyAmount(t.Amount) {
		return fmt.Errorf("amount cannot have more than %d decimal places", MoneyScale)
	}
	if t.Fees.IsNegative() || t.Commission.IsNegative() {
		return fmt.Errorf("fees and commission cannot be negative")
	}
	if t.Type.Debits() && t.FromAccount == "" {
		return fmt.Errorf("fromAccount is required for %s", t.Type)
	}
	if t.Type.Credits() && t.ToAccount == "" {
		return fmt.Errorf("toAccount is required for %s", t.Type)
	}
	if t.Type == Deposit && t.FromAccount != "" {
		return fmt.Errorf("fromAccount is not allowed for a deposit")
	}
	if t.Type == Withdrawal && t.ToAccount != "" {
		return fmt.Errorf("toAccount is not allowed for a withdrawal")
	}
	if t.Type.IsTransfer() && t.FromAccount == t.ToAccount {
		return fmt.Errorf("source and destination accounts must differ")
	}
	return nil
}

// MoneyScale is the number of decimal places the ledger stores for amounts and balances.
const MoneyScale = 2

// IsMoneyAmount reports whether d fits the ledger's scale without rounding.
func IsMoneyAmount(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}

// TransactionFilter narrows ledger queries. Zero values mean "any".
type TransactionFilter struct {
	AccountID string
	// OutgoingOnly restricts AccountID matching to the source side.
	OutgoingOnly bool
	Types        []TransactionType
	Statuses     []TransactionStatus
	From         time.Time
	To           time.Time
	// DescriptionContains is matched case-insensitively.
	DescriptionContains string
	FraudOnly           bool
	// AutomationRuleID keeps only transfers spawned by that rule.
	AutomationRuleID string
}

// Matches applies the filter to a single transaction.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.AccountID != "" {
		if f.OutgoingOnly {
			if t.FromAccount != f.AccountID {
				return false
			}
		} else if !t.Touches(f.AccountID) {
			return false
		}
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, t.Type) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, t.Status) {
		return false
	}
	if !f.From.IsZero() && t.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.Timestamp.Before(f.To) {
		return false
	}
	if f.DescriptionContains != "" && !containsFold(t.Description, f.DescriptionContains) {
		return false
	}
	if f.FraudOnly && !t.FraudFlag && t.SecurityLevel != SecurityHigh {
		return false
	}
	if f.AutomationRuleID != "" && (t.AutomationRuleID == nil || *t.AutomationRuleID != f.AutomationRuleID) {
		return false
	}
	return true
}
