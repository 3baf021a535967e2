package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/utils/pagination"
)

const defaultPageSize = 20

// Ledger keeps transactions in process memory.
type Ledger struct {
	mu   sync.RWMutex
	txns map[string]domain.Transaction
}

func NewLedger() *Ledger {
	return &Ledger{txns: make(map[string]domain.Transaction)}
}

// Ensure Ledger implements portsrepo.Ledger
var _ portsrepo.Ledger = (*Ledger)(nil)

func (l *Ledger) Insert(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.txns[txn.TransactionID]; exists {
		return nil, fmt.Errorf("%w: transaction %s already exists", apperrors.ErrDuplicate, txn.TransactionID)
	}
	txn.FraudFlags = slices.Clone(txn.FraudFlags)
	l.txns[txn.TransactionID] = txn
	return copyTxn(txn), nil
}

func (l *Ledger) UpdateStatus(ctx context.Context, transactionID string, status domain.TransactionStatus) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	txn, ok := l.txns[transactionID]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	if !txn.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: transaction %s cannot move from %s to %s", apperrors.ErrConflict, transactionID, txn.Status, status)
	}
	txn.Status = status
	l.txns[transactionID] = txn
	return copyTxn(txn), nil
}

func (l *Ledger) UpdateDescription(ctx context.Context, transactionID, description string) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	txn, ok := l.txns[transactionID]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	txn.Description = description
	l.txns[transactionID] = txn
	return copyTxn(txn), nil
}

func (l *Ledger) FindByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	txn, ok := l.txns[transactionID]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return copyTxn(txn), nil
}

func (l *Ledger) FindByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	all, err := l.FindTransactions(ctx, domain.TransactionFilter{AccountID: accountID})
	if err != nil {
		return nil, nil, err
	}

	start := 0
	if nextToken != nil && *nextToken != "" {
		cursorTS, cursorID, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		start = len(all)
		for i, t := range all {
			if pagination.After(t.Timestamp, t.TransactionID, cursorTS, cursorID) {
				start = i
				break
			}
		}
	}

	end := min(start+limit, len(all))
	page := all[start:end]
	var next *string
	if end < len(all) && len(page) > 0 {
		last := page[len(page)-1]
		token := pagination.EncodeCursor(last.Timestamp, last.TransactionID)
		next = &token
	}
	return page, next, nil
}

// FindTransactions returns matches newest first, ties broken by descending id.
func (l *Ledger) FindTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.RLock()
	out := make([]domain.Transaction, 0)
	for _, t := range l.txns {
		if filter.Matches(t) {
			out = append(out, *copyTxn(t))
		}
	}
	l.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Transaction) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		switch {
		case a.TransactionID > b.TransactionID:
			return -1
		case a.TransactionID < b.TransactionID:
			return 1
		}
		return 0
	})
	return out, nil
}

func copyTxn(t domain.Transaction) *domain.Transaction {
	t.FraudFlags = slices.Clone(t.FraudFlags)
	return &t
}
