// Package seed loads starting accounts into an account store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/middleware"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/platform/config"
	"github.com/shopspring/decimal"
)

// Accounts saves every seed entry that does not exist yet and returns how many
// were created. Existing accounts are left untouched, so seeding is repeatable.
func Accounts(ctx context.Context, store portsrepo.AccountWriter, seeds []config.SeedAccount, defaultCurrency string) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	now := time.Now()

	created := 0
	for i, s := range seeds {
		account, err := toAccount(s, defaultCurrency)
		if err != nil {
			return created, fmt.Errorf("%w: seed account #%d: %v", apperrors.ErrValidation, i+1, err)
		}
		account.AuditFields = domain.NewAuditFields(domain.SystemActor, now)
		if err := store.SaveAccount(ctx, account); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				logger.Debug("Seed account already exists", slog.String("account_id", account.AccountID))
				continue
			}
			return created, fmt.Errorf("failed to seed account %s: %w", account.AccountID, err)
		}
		created++
	}
	return created, nil
}

func toAccount(s config.SeedAccount, defaultCurrency string) (domain.Account, error) {
	id := strings.TrimSpace(s.AccountID)
	if id == "" {
		return domain.Account{}, fmt.Errorf("accountId is required")
	}

	balance := decimal.Zero
	if strings.TrimSpace(s.Balance) != "" {
		b, err := decimal.NewFromString(strings.TrimSpace(s.Balance))
		if err != nil {
			return domain.Account{}, fmt.Errorf("account %s: invalid balance '%s'", id, s.Balance)
		}
		balance = b
	}
	if balance.IsNegative() || !domain.IsMoneyAmount(balance) {
		return domain.Account{}, fmt.Errorf("account %s: balance must be a non-negative amount with at most %d decimals", id, domain.MoneyScale)
	}

	status := domain.AccountStatus(strings.ToLower(strings.TrimSpace(s.Status)))
	switch status {
	case "":
		status = domain.AccountActive
	case domain.AccountActive, domain.AccountFrozen, domain.AccountSuspended, domain.AccountClosed:
	default:
		return domain.Account{}, fmt.Errorf("account %s: unknown status '%s'", id, s.Status)
	}

	currency := strings.ToUpper(strings.TrimSpace(s.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	limits, err := toLimits(s.CustomLimits)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account %s: %w", id, err)
	}

	return domain.Account{
		AccountID:    id,
		Balance:      balance,
		Currency:     currency,
		Status:       status,
		CustomLimits: limits,
	}, nil
}

func toLimits(s *config.SeedLimits) (*domain.CustomLimits, error) {
	if s == nil {
		return nil, nil
	}
	parse := func(name, raw string) (*decimal.Decimal, error) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil || !d.IsPositive() {
			return nil, fmt.Errorf("invalid %s limit '%s'", name, raw)
		}
		return &d, nil
	}

	var limits domain.CustomLimits
	var err error
	if limits.DailyWithdrawal, err = parse("dailyWithdrawal", s.DailyWithdrawal); err != nil {
		return nil, err
	}
	if limits.DailyTransfer, err = parse("dailyTransfer", s.DailyTransfer); err != nil {
		return nil, err
	}
	if limits.SingleTransaction, err = parse("singleTransaction", s.SingleTransaction); err != nil {
		return nil, err
	}
	return &limits, nil
}
