package domain

import "github.com/shopspring/decimal"

// FeeBreakdown is the fee calculator's output for one transaction.
type FeeBreakdown struct {
	Type       TransactionType `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Fees       decimal.Decimal `json:"fees"`
	Commission decimal.Decimal `json:"commission"`
	Total      decimal.Decimal `json:"total"`
	Waived     bool            `json:"waived,omitempty"`
}

// Waive drops fee and commission, leaving the amount as the total.
func (b FeeBreakdown) Waive() FeeBreakdown {
	b.Fees = decimal.Zero
	b.Commission = decimal.Zero
	b.Total = b.Amount
	b.Waived = true
	return b
}

// CommissionReport aggregates the commission earned over a period.
type CommissionReport struct {
	Period           string          `json:"period"`
	TotalCommission  decimal.Decimal `json:"totalCommission"`
	TransactionCount int             `json:"transactionCount"`
	Transactions     []Transaction   `json:"transactions"`
}

// DefaultFeeWaivers are waived when a waiver request names no types.
var DefaultFeeWaivers = []TransactionType{InternalTransfer, Withdrawal}

// FeeWaiver lists the transaction types an account is not charged fees for.
type FeeWaiver struct {
	AccountID  string            `json:"accountId"`
	WaivedFees []TransactionType `json:"waivedFees"`
}

// IsFeeBearing reports whether the fee table can charge t.
func (t TransactionType) IsFeeBearing() bool {
	return t.Debits()
}
