package services

import (
	"context"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
)

// ReportSvcFacade defines the read-only analytics over completed transactions.
// Dates are YYYY-MM-DD in the configured time zone or RFC 3339 instants; an end
// date without a time covers that whole day.
type ReportSvcFacade interface {
	Summary(ctx context.Context, startDate, endDate string) (*domain.TransactionSummary, error)
	AccountStatistics(ctx context.Context, accountID, startDate, endDate string) (*domain.AccountStatistics, error)

	// Monthly reports one calendar month. Zero year or month means the current one.
	Monthly(ctx context.Context, year, month int) (*domain.MonthlyStatistics, error)

	// Trends reports the last days days, optionally for a single transaction type.
	Trends(ctx context.Context, days int, txType domain.TransactionType) (*domain.TrendReport, error)
}
