package dto

import (
	"strings"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MoneyMovementRequest is the body shared by every transaction endpoint.
type MoneyMovementRequest struct {
	FromAccount string          `json:"fromAccount"`
	ToAccount   string          `json:"toAccount"`
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Currency    string          `json:"currency" binding:"omitempty,len=3"`
	Description string          `json:"description" binding:"max=255"`
	CategoryID  *string         `json:"categoryId"`
}

// ToDomain builds the transaction request handed to the service.
func (r MoneyMovementRequest) ToDomain(txType domain.TransactionType) domain.Transaction {
	return domain.Transaction{
		Type:        txType,
		FromAccount: strings.TrimSpace(r.FromAccount),
		ToAccount:   strings.TrimSpace(r.ToAccount),
		Amount:      r.Amount,
		Currency:    strings.ToUpper(r.Currency),
		Description: strings.TrimSpace(r.Description),
		CategoryID:  r.CategoryID,
	}
}

// CreateTransactionRequest is the generic body carrying its own type.
type CreateTransactionRequest struct {
	Type domain.TransactionType `json:"type" binding:"required,txtype"`
	MoneyMovementRequest
}

// TransactionResponse is returned for a processed transaction.
type TransactionResponse struct {
	Success     bool                `json:"success"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
	Steps       []domain.SagaStep   `json:"steps,omitempty"`
	Automation  []domain.RuleResult `json:"automation,omitempty"`
}

// ErrorResponse is returned whenever a request fails. Transaction is set when a
// ledger row was written before the failure.
type ErrorResponse struct {
	Success     bool                `json:"success"`
	Error       string              `json:"error"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
}

// NewErrorResponse builds a failed response.
func NewErrorResponse(msg string, txn *domain.Transaction) ErrorResponse {
	return ErrorResponse{Success: false, Error: msg, Transaction: txn}
}

// ReversalResponse is returned for a reversed transaction.
type ReversalResponse struct {
	Success             bool                `json:"success"`
	OriginalTransaction *domain.Transaction `json:"originalTransaction"`
	ReversalTransaction *domain.Transaction `json:"reversalTransaction"`
	Automation          []domain.RuleResult `json:"automation,omitempty"`
}

// ListTransactionsParams defines query parameters for account history.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse is a page of transactions.
type ListTransactionsResponse struct {
	Success      bool                 `json:"success"`
	Count        int                  `json:"count"`
	Transactions []domain.Transaction `json:"transactions"`
	NextToken    *string              `json:"nextToken,omitempty"`
}

// FraudCheckResponse carries a fraud assessment computed without executing anything.
type FraudCheckResponse struct {
	Success    bool                   `json:"success"`
	Assessment domain.FraudAssessment `json:"assessment"`
}

// FeeCalculationRequest asks for the fees a transaction would incur.
type FeeCalculationRequest struct {
	Type   domain.TransactionType `json:"type" binding:"required,txtype"`
	Amount decimal.Decimal        `json:"amount" binding:"required,gt=0"`
}

// FeeCalculationResponse carries the computed fee breakdown.
type FeeCalculationResponse struct {
	Success     bool                `json:"success"`
	Calculation domain.FeeBreakdown `json:"calculation"`
}

// CommissionResponse carries the commission report for a period.
type CommissionResponse struct {
	Success bool `json:"success"`
	domain.CommissionReport
}

// UpdateTransactionRequest edits the description of a recorded transaction.
// Money fields are not accepted.
type UpdateTransactionRequest struct {
	Description *string `json:"description" binding:"required,max=255"`
}

// FeeWaiverRequest names the fee types to waive. An empty list waives the
// internal transfer and withdrawal fees.
type FeeWaiverRequest struct {
	Types []domain.TransactionType `json:"types" binding:"omitempty,dive,txtype"`
}

// FeeWaiverResponse carries an account's waived fee types.
type FeeWaiverResponse struct {
	Success bool `json:"success"`
	domain.FeeWaiver
}
