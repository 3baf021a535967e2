package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
)

// GuardContext is the state shared along the guard chain for one request.
type GuardContext struct {
	Transaction *domain.Transaction
	Accounts    map[string]*domain.Account
	Fees        *domain.FeeBreakdown
	Fraud       *domain.FraudAssessment
}

// Guard inspects or annotates a transaction before any ledger row exists.
// A non-nil error rejects the transaction.
type Guard func(ctx context.Context, gc *GuardContext) error

// runGuards runs guards in order and stops at the first rejection.
func runGuards(ctx context.Context, gc *GuardContext, guards ...Guard) error {
	for _, g := range guards {
		if err := g(ctx, gc); err != nil {
			return err
		}
	}
	return nil
}

// accountStatusGuard loads every referenced account and rejects missing or blocked ones.
func accountStatusGuard(accounts portsrepo.AccountReader) Guard {
	return func(ctx context.Context, gc *GuardContext) error {
		tx := gc.Transaction
		if gc.Accounts == nil {
			gc.Accounts = make(map[string]*domain.Account, 2)
		}
		for _, id := range tx.AccountIDs() {
			acc, err := accounts.GetAccount(ctx, id)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrAccountNotFound) {
					return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
				}
				return err
			}
			if acc.Status.IsBlocked() {
				return fmt.Errorf("%w: account %s is %s", apperrors.ErrAccountBlocked, id, acc.Status)
			}
			gc.Accounts[id] = acc
		}
		if tx.FromAccount != "" && !gc.Accounts[tx.FromAccount].IsActive() {
			return fmt.Errorf("%w: source account %s is not active", apperrors.ErrAccountBlocked, tx.FromAccount)
		}
		return nil
	}
}

func limitsGuard(checker *LimitChecker) Guard {
	return func(ctx context.Context, gc *GuardContext) error {
		if !gc.Transaction.Type.Debits() {
			return nil
		}
		return checker.Check(ctx, *gc.Transaction, gc.Accounts[gc.Transaction.FromAccount])
	}
}

// feesGuard prices the transaction. A fee waiver on the source account zeroes
// fee and commission.
func feesGuard(calc *FeeCalculator) Guard {
	return func(_ context.Context, gc *GuardContext) error {
		tx := gc.Transaction
		breakdown := calc.Calculate(tx.Type, tx.Amount)
		if source := gc.Accounts[tx.FromAccount]; source != nil && source.WaivesFees(tx.Type) {
			breakdown = breakdown.Waive()
		}
		gc.Transaction.Fees = breakdown.Fees
		gc.Transaction.Commission = breakdown.Commission
		gc.Fees = &breakdown
		return nil
	}
}

// fraudGuard annotates the transaction. Scoring failures are logged and the
// transaction proceeds unflagged.
func fraudGuard(scorer *FraudScorer) Guard {
	return func(ctx context.Context, gc *GuardContext) error {
		assessment, err := scorer.Assess(ctx, *gc.Transaction)
		if err != nil {
			scorer.LogError(ctx, err, "Fraud scoring failed, continuing unflagged")
			return nil
		}
		assessment.Apply(gc.Transaction)
		gc.Fraud = assessment
		return nil
	}
}
