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
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SagaOrchestrator applies a transaction to the account store as the ordered
// steps created, validated, debited, credited and committed. Every applied
// balance change registers a compensation that is undone in reverse order if a
// later step fails.
type SagaOrchestrator struct {
	BaseService
	accounts portsrepo.AccountStore
	ledger   portsrepo.Ledger
	locker   *accountLocker
}

// NewSagaOrchestrator creates a saga bound to the given stores. storeTimeout bounds
// every individual store call; a timeout fails the step and triggers compensation.
func NewSagaOrchestrator(accounts portsrepo.AccountStore, ledger portsrepo.Ledger, storeTimeout time.Duration, now domain.Clock) *SagaOrchestrator {
	return &SagaOrchestrator{
		BaseService: newBaseService(now, time.UTC),
		accounts:    newTimedAccountStore(accounts, storeTimeout),
		ledger:      newTimedLedger(ledger, storeTimeout),
		locker:      newAccountLocker(),
	}
}

// compensation undoes one applied balance change.
type compensation struct {
	step      int
	accountID string
	amount    decimal.Decimal
	direction domain.BalanceDirection
}

type sagaRun struct {
	txn           domain.Transaction
	steps         []domain.SagaStep
	compensations []compensation
}

func (r *sagaRun) record(state domain.SagaState, accountID string, status domain.SagaStepStatus, err error) int {
	step := domain.SagaStep{State: state, AccountID: accountID, Status: status}
	if err != nil {
		step.Error = err.Error()
	}
	r.steps = append(r.steps, step)
	return len(r.steps) - 1
}

func (r *sagaRun) result(success bool) *domain.SagaResult {
	txn := r.txn
	return &domain.SagaResult{Success: success, Transaction: &txn, Steps: r.steps}
}

// ExecuteSaga locks the referenced accounts and runs txn through the saga.
func (s *SagaOrchestrator) ExecuteSaga(ctx context.Context, txn domain.Transaction) (*domain.SagaResult, error) {
	unlock := s.locker.Lock(txn.AccountIDs()...)
	defer unlock()
	return s.executeLocked(ctx, txn)
}

// executeLocked runs the saga. Callers must hold the account locks for txn.
func (s *SagaOrchestrator) executeLocked(ctx context.Context, txn domain.Transaction) (*domain.SagaResult, error) {
	logger := s.GetLogger(ctx)

	if err := txn.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if txn.TransactionID == "" {
		txn.TransactionID = uuid.NewString()
	}
	if txn.Timestamp.IsZero() {
		txn.Timestamp = s.now().UTC()
	}
	if txn.SecurityLevel == "" {
		txn.SecurityLevel = domain.SecurityLow
	}
	txn.Status = domain.StatusPending

	run := &sagaRun{txn: txn}
	logger = logger.With(slog.String("transaction_id", txn.TransactionID), slog.String("type", string(txn.Type)))

	inserted, err := s.insert(ctx, txn)
	if err != nil {
		run.record(domain.SagaCreated, "", domain.StepFailed, err)
		logger.Error("Failed to record pending transaction", slog.String("error", err.Error()))
		return run.result(false), fmt.Errorf("failed to record transaction: %w", err)
	}
	run.txn = *inserted
	run.record(domain.SagaCreated, "", domain.StepDone, nil)

	accounts := make(map[string]*domain.Account, 2)
	for _, id := range txn.AccountIDs() {
		acc, err := s.getAccount(ctx, id)
		if err != nil {
			return s.fail(ctx, run, domain.SagaValidated, id, err)
		}
		if !acc.IsActive() {
			return s.fail(ctx, run, domain.SagaValidated, id, fmt.Errorf("%w: account %s is %s", apperrors.ErrAccountInactive, id, acc.Status))
		}
		accounts[id] = acc
	}
	run.record(domain.SagaValidated, "", domain.StepDone, nil)

	if txn.Type.Debits() {
		total := txn.TotalDebit()
		source := accounts[txn.FromAccount]
		if source.Balance.LessThan(total) {
			return s.fail(ctx, run, domain.SagaDebited, txn.FromAccount,
				fmt.Errorf("%w: account %s has %s, needs %s", apperrors.ErrInsufficientBalance, txn.FromAccount, source.Balance.StringFixed(2), total.StringFixed(2)))
		}
		if _, err := s.applyDelta(ctx, txn.FromAccount, total, domain.BalanceDebit); err != nil {
			return s.fail(ctx, run, domain.SagaDebited, txn.FromAccount, err)
		}
		step := run.record(domain.SagaDebited, txn.FromAccount, domain.StepDone, nil)
		run.compensations = append(run.compensations, compensation{step: step, accountID: txn.FromAccount, amount: total, direction: domain.BalanceCredit})
	}

	if txn.Type.Credits() {
		if _, err := s.applyDelta(ctx, txn.ToAccount, txn.Amount, domain.BalanceCredit); err != nil {
			return s.fail(ctx, run, domain.SagaCredited, txn.ToAccount, err)
		}
		step := run.record(domain.SagaCredited, txn.ToAccount, domain.StepDone, nil)
		run.compensations = append(run.compensations, compensation{step: step, accountID: txn.ToAccount, amount: txn.Amount, direction: domain.BalanceDebit})
	}

	committed, err := s.updateStatus(ctx, txn.TransactionID, domain.StatusCompleted)
	if err != nil {
		return s.fail(ctx, run, domain.SagaCommitted, "", err)
	}
	run.txn = *committed
	run.record(domain.SagaCommitted, "", domain.StepDone, nil)

	logger.Info("Transaction committed", slog.String("amount", txn.Amount.String()), slog.String("fees", txn.Fees.String()))
	return run.result(true), nil
}

// fail records the failed step, undoes applied balance changes newest first and
// marks the ledger row failed. Compensation runs detached from ctx cancellation.
func (s *SagaOrchestrator) fail(ctx context.Context, run *sagaRun, state domain.SagaState, accountID string, cause error) (*domain.SagaResult, error) {
	logger := s.GetLogger(ctx).With(slog.String("transaction_id", run.txn.TransactionID))
	run.record(state, accountID, domain.StepFailed, cause)
	logger.Warn("Saga step failed, compensating",
		slog.String("state", string(state)),
		slog.String("account_id", accountID),
		slog.String("error", cause.Error()))

	compCtx := context.WithoutCancel(ctx)
	var compErrs []error
	for i := len(run.compensations) - 1; i >= 0; i-- {
		c := run.compensations[i]
		if _, err := s.applyDelta(compCtx, c.accountID, c.amount, c.direction); err != nil {
			run.steps[c.step].Status = domain.StepCompensationFailed
			run.steps[c.step].Error = err.Error()
			compErrs = append(compErrs, fmt.Errorf("undo %s of %s on %s: %w", c.direction, c.amount.StringFixed(2), c.accountID, err))
			logger.Error("Saga compensation failed, manual reconciliation required",
				slog.String("account_id", c.accountID),
				slog.String("amount", c.amount.String()),
				slog.String("direction", string(c.direction)),
				slog.String("error", err.Error()))
			continue
		}
		run.steps[c.step].Status = domain.StepCompensated
	}

	failed, err := s.updateStatus(compCtx, run.txn.TransactionID, domain.StatusFailed)
	if err != nil {
		compErrs = append(compErrs, fmt.Errorf("mark transaction failed: %w", err))
		logger.Error("Failed to mark transaction failed", slog.String("error", err.Error()))
		run.txn.Status = domain.StatusFailed
	} else {
		run.txn = *failed
	}

	if len(compErrs) > 0 {
		return run.result(false), errors.Join(cause, fmt.Errorf("%w: %w", apperrors.ErrCompensationFailure, errors.Join(compErrs...)))
	}
	return run.result(false), cause
}

func (s *SagaOrchestrator) insert(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	return s.ledger.Insert(ctx, txn)
}

func (s *SagaOrchestrator) getAccount(ctx context.Context, id string) (*domain.Account, error) {
	return s.accounts.GetAccount(ctx, id)
}

func (s *SagaOrchestrator) applyDelta(ctx context.Context, id string, amount decimal.Decimal, direction domain.BalanceDirection) (*domain.Account, error) {
	return s.accounts.ApplyBalanceDelta(ctx, id, amount, direction)
}

func (s *SagaOrchestrator) updateStatus(ctx context.Context, id string, status domain.TransactionStatus) (*domain.Transaction, error) {
	return s.ledger.UpdateStatus(ctx, id, status)
}
