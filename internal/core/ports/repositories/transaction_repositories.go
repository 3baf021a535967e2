package repositories

import (
	"context"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
)

// LedgerReader defines read operations on the transaction ledger
type LedgerReader interface {
	// FindByID retrieves a transaction. Missing rows yield apperrors.ErrNotFound.
	FindByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindByAccount lists transactions touching an account, newest first, one page at a time.
	FindByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// FindTransactions lists every transaction matching filter, newest first.
	FindTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
}

// LedgerWriter defines write operations on the transaction ledger
type LedgerWriter interface {
	// Insert records a new transaction row.
	Insert(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error)

	// UpdateStatus moves a transaction to status as a compare-and-set. Transitions that
	// domain.TransactionStatus.CanTransitionTo rejects fail with apperrors.ErrConflict.
	UpdateStatus(ctx context.Context, transactionID string, status domain.TransactionStatus) (*domain.Transaction, error)

	// UpdateDescription replaces the free-text description. Amounts, parties and
	// status are never touched.
	UpdateDescription(ctx context.Context, transactionID, description string) (*domain.Transaction, error)
}

// Ledger combines all ledger repository interfaces
type Ledger interface {
	LedgerReader
	LedgerWriter
}
