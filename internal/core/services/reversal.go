package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// ReversalEngine undoes completed transactions by running a mirror transaction
// through the saga and then flipping the original to reversed.
type ReversalEngine struct {
	BaseService
	ledger portsrepo.Ledger
	saga   *SagaOrchestrator
}

func NewReversalEngine(ledger portsrepo.Ledger, saga *SagaOrchestrator, now domain.Clock) *ReversalEngine {
	return &ReversalEngine{
		BaseService: newBaseService(now, time.UTC),
		ledger:      ledger,
		saga:        saga,
	}
}

// Reverse reverses the completed transaction id. The original is claimed
// (completed to reversing) before any money moves, so a transaction is reversed
// at most once even when a later ledger write fails or another replica races.
// A failed mirror releases the claim; a committed mirror settles it as reversed.
func (r *ReversalEngine) Reverse(ctx context.Context, id string) (*domain.ReversalResult, error) {
	logger := r.GetLogger(ctx).With(slog.String("transaction_id", id))

	original, err := r.ledger.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := r.saga.locker.Lock(original.AccountIDs()...)
	defer unlock()

	// Re-read under the lock so a concurrent reversal is observed.
	original, err = r.ledger.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch original.Status {
	case domain.StatusCompleted:
	case domain.StatusReversed:
		return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrAlreadyReversed, id)
	case domain.StatusReversing:
		return nil, fmt.Errorf("%w: transaction %s has a reversal in progress", apperrors.ErrConflict, id)
	default:
		return nil, fmt.Errorf("%w: transaction %s is %s", apperrors.ErrNotCompleted, id, original.Status)
	}

	claimed, err := r.saga.updateStatus(ctx, id, domain.StatusReversing)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrAlreadyReversed, id)
		}
		logger.Error("Failed to claim transaction for reversal", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to claim transaction %s for reversal: %w", id, err)
	}

	sagaResult, err := r.saga.executeLocked(ctx, mirrorOf(*original))
	if err != nil {
		result := &domain.ReversalResult{Success: false, OriginalTransaction: claimed}
		if sagaResult != nil {
			result.ReversalTransaction = sagaResult.Transaction
		}
		released, relErr := r.saga.updateStatus(context.WithoutCancel(ctx), id, domain.StatusCompleted)
		if relErr != nil {
			logger.Error("Failed to release reversal claim, manual reconciliation required",
				slog.String("error", relErr.Error()))
			return result, errors.Join(
				fmt.Errorf("reversal of %s failed: %w", id, err),
				fmt.Errorf("%w: release claim on %s: %w", apperrors.ErrCompensationFailure, id, relErr))
		}
		result.OriginalTransaction = released
		return result, fmt.Errorf("reversal of %s failed: %w", id, err)
	}

	reversalID := sagaResult.Transaction.TransactionID
	reversed, err := r.saga.updateStatus(context.WithoutCancel(ctx), id, domain.StatusReversed)
	if err != nil {
		// The mirror is applied and the original stays claimed, so it cannot be reversed again.
		logger.Error("Reversal applied but original not settled, manual reconciliation required",
			slog.String("reversal_id", reversalID),
			slog.String("error", err.Error()))
		result := &domain.ReversalResult{Success: false, OriginalTransaction: claimed, ReversalTransaction: sagaResult.Transaction}
		return result, fmt.Errorf("%w: reversal %s applied but transaction %s left %s: %w",
			apperrors.ErrCompensationFailure, reversalID, id, domain.StatusReversing, err)
	}

	logger.Info("Transaction reversed", slog.String("reversal_id", reversalID))
	return &domain.ReversalResult{
		Success:             true,
		OriginalTransaction: reversed,
		ReversalTransaction: sagaResult.Transaction,
	}, nil
}

// mirrorOf builds the transaction that cancels the balance effect of original's amount.
// Fees are not refunded.
func mirrorOf(original domain.Transaction) domain.Transaction {
	ref := original.TransactionID
	mirror := domain.Transaction{
		Type:         original.Type,
		Amount:       original.Amount,
		Currency:     original.Currency,
		Fees:         decimal.Zero,
		Commission:   decimal.Zero,
		Description:  "Reversal of " + original.TransactionID,
		Reference:    &ref,
		CategoryID:   original.CategoryID,
		CategoryName: original.CategoryName,
		Depth:        original.Depth,
	}
	switch original.Type {
	case domain.Deposit:
		mirror.Type = domain.Withdrawal
		mirror.FromAccount = original.ToAccount
	case domain.Withdrawal:
		mirror.Type = domain.Deposit
		mirror.ToAccount = original.FromAccount
	default:
		mirror.FromAccount = original.ToAccount
		mirror.ToAccount = original.FromAccount
	}
	return mirror
}
