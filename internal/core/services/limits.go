package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/platform/config"
	"github.com/shopspring/decimal"
)

// LimitChecker enforces the per-transaction and daily ceilings on debits.
// A custom limit can raise a global ceiling but never lower it.
type LimitChecker struct {
	BaseService
	limits config.LimitsConfig
	ledger portsrepo.LedgerReader
}

func NewLimitChecker(limits config.LimitsConfig, ledger portsrepo.LedgerReader, now domain.Clock, loc *time.Location) *LimitChecker {
	return &LimitChecker{
		BaseService: newBaseService(now, loc),
		limits:      limits,
		ledger:      ledger,
	}
}

// Check rejects tx with ErrLimitExceeded when it would break any ceiling for source.
// Deposits are never limited.
func (l *LimitChecker) Check(ctx context.Context, tx domain.Transaction, source *domain.Account) error {
	class := domain.LimitClassOf(tx.Type)
	if class == "" {
		return nil
	}
	if source == nil {
		return fmt.Errorf("%w: source account %s", apperrors.ErrAccountNotFound, tx.FromAccount)
	}

	if tx.Amount.LessThan(l.limits.MinTransaction) {
		return fmt.Errorf("%w: minimum transaction amount is %s", apperrors.ErrLimitExceeded, l.limits.MinTransaction.StringFixed(2))
	}

	single := l.singleLimit(source.CustomLimits)
	if tx.Amount.GreaterThan(single) {
		return fmt.Errorf("%w: amount %s exceeds single transaction limit %s", apperrors.ErrLimitExceeded, tx.Amount.StringFixed(2), single.StringFixed(2))
	}

	used, err := l.dailyUsed(ctx, source.AccountID, class)
	if err != nil {
		return err
	}
	daily := l.dailyLimit(class, source.CustomLimits)
	if used.Add(tx.Amount).GreaterThan(daily) {
		return fmt.Errorf("%w: daily %s limit %s reached (used %s)", apperrors.ErrLimitExceeded, class, daily.StringFixed(2), used.StringFixed(2))
	}

	if source.Balance.Sub(tx.Amount).LessThan(l.limits.MinBalance) {
		return fmt.Errorf("%w: balance cannot fall below %s", apperrors.ErrLimitExceeded, l.limits.MinBalance.StringFixed(2))
	}
	return nil
}

// Overview reports today's consumption of every ceiling for account.
func (l *LimitChecker) Overview(ctx context.Context, account *domain.Account) (*domain.AccountLimits, error) {
	usage := func(class domain.LimitClass) (domain.LimitUsage, error) {
		used, err := l.dailyUsed(ctx, account.AccountID, class)
		if err != nil {
			return domain.LimitUsage{}, err
		}
		limit := l.dailyLimit(class, account.CustomLimits)
		remaining := limit.Sub(used)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		return domain.LimitUsage{Used: used, Limit: limit, Remaining: remaining}, nil
	}

	withdrawal, err := usage(domain.LimitClassWithdrawal)
	if err != nil {
		return nil, err
	}
	transfer, err := usage(domain.LimitClassTransfer)
	if err != nil {
		return nil, err
	}

	return &domain.AccountLimits{
		AccountID:         account.AccountID,
		DailyWithdrawal:   withdrawal,
		DailyTransfer:     transfer,
		SingleTransaction: l.singleLimit(account.CustomLimits),
		MinTransaction:    l.limits.MinTransaction,
		MinBalance:        l.limits.MinBalance,
		CustomLimits:      account.CustomLimits,
	}, nil
}

// dailyUsed sums the completed outgoing transactions of class since local midnight.
func (l *LimitChecker) dailyUsed(ctx context.Context, accountID string, class domain.LimitClass) (decimal.Decimal, error) {
	txns, err := l.ledger.FindTransactions(ctx, domain.TransactionFilter{
		AccountID:    accountID,
		OutgoingOnly: true,
		Types:        class.Types(),
		Statuses:     []domain.TransactionStatus{domain.StatusCompleted},
		From:         domain.StartOfDay(l.Now(), l.loc),
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load daily %s usage: %w", class, err)
	}
	used := decimal.Zero
	for _, t := range txns {
		used = used.Add(t.Amount)
	}
	return used, nil
}

func (l *LimitChecker) singleLimit(custom *domain.CustomLimits) decimal.Decimal {
	if custom == nil {
		return l.limits.SingleTransaction
	}
	return maxLimit(custom.SingleTransaction, l.limits.SingleTransaction)
}

func (l *LimitChecker) dailyLimit(class domain.LimitClass, custom *domain.CustomLimits) decimal.Decimal {
	switch class {
	case domain.LimitClassWithdrawal:
		if custom == nil {
			return l.limits.DailyWithdrawal
		}
		return maxLimit(custom.DailyWithdrawal, l.limits.DailyWithdrawal)
	default:
		if custom == nil {
			return l.limits.DailyTransfer
		}
		return maxLimit(custom.DailyTransfer, l.limits.DailyTransfer)
	}
}

func maxLimit(custom *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if custom == nil {
		return fallback
	}
	return decimal.Max(*custom, fallback)
}
