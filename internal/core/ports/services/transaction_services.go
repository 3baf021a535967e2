package services

import (
	"context"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionProcessorSvc defines the money-moving operations
type TransactionProcessorSvc interface {
	// Process runs a request through the guard chain and the saga, then the automation rules.
	// The returned result is non-nil whenever a ledger row was written, even on failure.
	Process(ctx context.Context, txn domain.Transaction) (*domain.ProcessResult, error)

	// Reverse mirrors a completed transaction and marks the original reversed.
	Reverse(ctx context.Context, transactionID string) (*domain.ReversalResult, error)
}

// TransactionReaderSvc defines ledger queries
type TransactionReaderSvc interface {
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
	ListSuspicious(ctx context.Context, accountID string) ([]domain.Transaction, error)
}

// TransactionInsightSvc defines the side-effect free guard computations exposed over the API
type TransactionInsightSvc interface {
	AssessFraud(ctx context.Context, txn domain.Transaction) (*domain.FraudAssessment, error)
	CalculateFees(txType domain.TransactionType, amount decimal.Decimal) domain.FeeBreakdown
	GetCommissions(ctx context.Context, period string) (*domain.CommissionReport, error)
}

// LimitSvc defines account limit operations
type LimitSvc interface {
	GetLimits(ctx context.Context, accountID string) (*domain.AccountLimits, error)
	UpdateLimits(ctx context.Context, accountID string, limits domain.CustomLimits) (*domain.AccountLimits, error)
}

// TransactionEditorSvc defines the edits allowed on a recorded transaction
type TransactionEditorSvc interface {
	// UpdateDescription replaces the description only; money fields are immutable.
	UpdateDescription(ctx context.Context, transactionID, description string) (*domain.Transaction, error)
}

// FeeWaiverSvc defines per-account fee waivers
type FeeWaiverSvc interface {
	GetFeeWaiver(ctx context.Context, accountID string) (*domain.FeeWaiver, error)

	// WaiveFees adds types to the account's waivers, domain.DefaultFeeWaivers when types is empty.
	WaiveFees(ctx context.Context, accountID string, types []domain.TransactionType) (*domain.FeeWaiver, error)

	// RemoveFeeWaivers clears every waiver of the account.
	RemoveFeeWaivers(ctx context.Context, accountID string) (*domain.FeeWaiver, error)
}

// TransactionSvcFacade combines all transaction-related service interfaces
type TransactionSvcFacade interface {
	TransactionProcessorSvc
	TransactionReaderSvc
	TransactionEditorSvc
	TransactionInsightSvc
	LimitSvc
	FeeWaiverSvc
}
