package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/platform/config"
)

// FraudScorer flags unusual transactions. It only annotates, it never rejects.
type FraudScorer struct {
	BaseService
	cfg    config.FraudConfig
	ledger portsrepo.LedgerReader
}

func NewFraudScorer(cfg config.FraudConfig, ledger portsrepo.LedgerReader, now domain.Clock, loc *time.Location) *FraudScorer {
	return &FraudScorer{
		BaseService: newBaseService(now, loc),
		cfg:         cfg,
		ledger:      ledger,
	}
}

// Assess scores tx against the amount, velocity and business-hours rules.
func (f *FraudScorer) Assess(ctx context.Context, tx domain.Transaction) (*domain.FraudAssessment, error) {
	flags := make([]string, 0, 3)
	now := f.Now()

	suspicious := tx.Amount.GreaterThanOrEqual(f.cfg.SuspiciousAmount)
	if suspicious {
		flags = append(flags, domain.FlagSuspiciousAmount)
	}

	rapid := false
	if accountID := watchedAccount(tx); accountID != "" && f.cfg.RapidCount > 0 {
		recent, err := f.ledger.FindTransactions(ctx, domain.TransactionFilter{
			AccountID: accountID,
			Statuses:  []domain.TransactionStatus{domain.StatusCompleted},
			From:      now.Add(-f.cfg.RapidWindow),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load recent transactions for %s: %w", accountID, err)
		}
		if len(recent) >= f.cfg.RapidCount {
			rapid = true
			flags = append(flags, domain.FlagRapidTransactions)
		}
	}

	medium := tx.Amount.GreaterThanOrEqual(f.cfg.MediumAmount)
	if hour := now.Hour(); medium && (hour < f.cfg.BusinessHoursStart || hour >= f.cfg.BusinessHoursEnd) {
		flags = append(flags, domain.FlagOutsideBusinessHours)
	}

	level := domain.SecurityLow
	switch {
	case suspicious || rapid:
		level = domain.SecurityHigh
	case medium:
		level = domain.SecurityMedium
	}

	return &domain.FraudAssessment{
		SecurityLevel: level,
		FraudFlag:     len(flags) > 0,
		Flags:         flags,
	}, nil
}

// watchedAccount is the account whose velocity is checked: the payer when there
// is one, otherwise the payee.
func watchedAccount(tx domain.Transaction) string {
	if tx.FromAccount != "" {
		return tx.FromAccount
	}
	return tx.ToAccount
}
