package services

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	portssvc "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

const (
	defaultTrendDays = 30
	maxTrendDays     = 366
	reportDateLayout = "2006-01-02"
)

// reportedStatuses are the ledger rows whose money actually moved. A reversed
// original stays in so that it nets out against its completed mirror.
var reportedStatuses = []domain.TransactionStatus{domain.StatusCompleted, domain.StatusReversing, domain.StatusReversed}

// reportService aggregates ledger rows into summaries. It never writes.
type reportService struct {
	BaseService
	accounts portsrepo.AccountReader
	ledger   portsrepo.LedgerReader
}

func NewReportService(accounts portsrepo.AccountReader, ledger portsrepo.LedgerReader, now domain.Clock, loc *time.Location) portssvc.ReportSvcFacade {
	return &reportService{
		BaseService: newBaseService(now, loc),
		accounts:    accounts,
		ledger:      ledger,
	}
}

// Ensure reportService implements the ReportSvcFacade interface
var _ portssvc.ReportSvcFacade = (*reportService)(nil)

func (s *reportService) Summary(ctx context.Context, startDate, endDate string) (*domain.TransactionSummary, error) {
	period, filter, err := s.periodFilter(startDate, endDate)
	if err != nil {
		return nil, err
	}
	txns, err := s.find(ctx, filter, "summary")
	if err != nil {
		return nil, err
	}

	summary := &domain.TransactionSummary{
		TotalTransactions:        len(txns),
		TotalAmount:              decimal.Zero,
		TotalDepositAmount:       decimal.Zero,
		TotalWithdrawalAmount:    decimal.Zero,
		TotalTransferAmount:      decimal.Zero,
		AverageTransactionAmount: decimal.Zero,
		Period:                   period,
	}
	for _, t := range txns {
		summary.TotalAmount = summary.TotalAmount.Add(t.Amount)
		switch {
		case t.Type == domain.Deposit:
			summary.TotalDeposits++
			summary.TotalDepositAmount = summary.TotalDepositAmount.Add(t.Amount)
		case t.Type == domain.Withdrawal:
			summary.TotalWithdrawals++
			summary.TotalWithdrawalAmount = summary.TotalWithdrawalAmount.Add(t.Amount)
		case t.Type.IsTransfer():
			summary.TotalTransfers++
			summary.TotalTransferAmount = summary.TotalTransferAmount.Add(t.Amount)
		}
	}
	summary.AverageTransactionAmount = average(summary.TotalAmount, summary.TotalTransactions)
	return summary, nil
}

func (s *reportService) AccountStatistics(ctx context.Context, accountID, startDate, endDate string) (*domain.AccountStatistics, error) {
	period, filter, err := s.periodFilter(startDate, endDate)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	filter.AccountID = accountID
	txns, err := s.find(ctx, filter, "account statistics", slog.String("account_id", accountID))
	if err != nil {
		return nil, err
	}

	stats := &domain.AccountStatistics{
		AccountID:         accountID,
		AccountBalance:    account.Balance,
		TotalTransactions: len(txns),
		TotalIncoming:     decimal.Zero,
		TotalOutgoing:     decimal.Zero,
		Period:            period,
	}
	for _, t := range txns {
		incoming := t.ToAccount == accountID
		outgoing := t.FromAccount == accountID
		if incoming {
			stats.IncomingTransactions++
			stats.TotalIncoming = stats.TotalIncoming.Add(t.Amount)
		}
		if outgoing {
			stats.OutgoingTransactions++
			stats.TotalOutgoing = stats.TotalOutgoing.Add(t.Amount)
		}
		switch {
		case t.Type == domain.Deposit && incoming:
			stats.Deposits++
		case t.Type == domain.Withdrawal && outgoing:
			stats.Withdrawals++
		case t.Type.IsTransfer():
			stats.Transfers++
		}
	}
	stats.NetFlow = stats.TotalIncoming.Sub(stats.TotalOutgoing)
	stats.AverageIncoming = average(stats.TotalIncoming, stats.IncomingTransactions)
	stats.AverageOutgoing = average(stats.TotalOutgoing, stats.OutgoingTransactions)
	return stats, nil
}

func (s *reportService) Monthly(ctx context.Context, year, month int) (*domain.MonthlyStatistics, error) {
	now := s.Now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if year < 1 || year > 9999 {
		return nil, fmt.Errorf("%w: year must be between 1 and 9999, got %d", apperrors.ErrValidation, year)
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12, got %d", apperrors.ErrValidation, month)
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)
	txns, err := s.find(ctx, domain.TransactionFilter{
		Statuses: reportedStatuses,
		From:     start,
		To:       start.AddDate(0, 1, 0),
	}, "monthly statistics", slog.Int("year", year), slog.Int("month", month))
	if err != nil {
		return nil, err
	}

	stats := &domain.MonthlyStatistics{
		Year:              year,
		Month:             month,
		MonthName:         time.Month(month).String(),
		TotalTransactions: len(txns),
		TotalAmount:       decimal.Zero,
		Deposits:          domain.TypeTotals{Total: decimal.Zero},
		Withdrawals:       domain.TypeTotals{Total: decimal.Zero},
		Transfers:         domain.TypeTotals{Total: decimal.Zero},
	}
	days := make(map[string]*domain.DailyTotals)
	for _, t := range txns {
		stats.TotalAmount = stats.TotalAmount.Add(t.Amount)
		switch {
		case t.Type == domain.Deposit:
			stats.Deposits.Add(t.Amount)
		case t.Type == domain.Withdrawal:
			stats.Withdrawals.Add(t.Amount)
		case t.Type.IsTransfer():
			stats.Transfers.Add(t.Amount)
		}

		date := t.Timestamp.In(s.loc).Format(reportDateLayout)
		day, ok := days[date]
		if !ok {
			day = &domain.DailyTotals{Date: date, Amount: decimal.Zero}
			days[date] = day
		}
		day.Count++
		day.Amount = day.Amount.Add(t.Amount)
	}

	stats.DailyBreakdown = make([]domain.DailyTotals, 0, len(days))
	for _, day := range days {
		stats.DailyBreakdown = append(stats.DailyBreakdown, *day)
	}
	slices.SortFunc(stats.DailyBreakdown, func(a, b domain.DailyTotals) int { return cmp.Compare(a.Date, b.Date) })
	return stats, nil
}

func (s *reportService) Trends(ctx context.Context, days int, txType domain.TransactionType) (*domain.TrendReport, error) {
	if days == 0 {
		days = defaultTrendDays
	}
	if days < 1 || days > maxTrendDays {
		return nil, fmt.Errorf("%w: period must be between 1 and %d days, got %d", apperrors.ErrValidation, maxTrendDays, days)
	}
	filter := domain.TransactionFilter{
		Statuses: reportedStatuses,
		From:     domain.StartOfDay(s.Now(), s.loc).AddDate(0, 0, -(days - 1)),
	}
	report := &domain.TrendReport{Days: days}
	if txType != "" {
		if !txType.IsValid() {
			return nil, fmt.Errorf("%w: unknown transaction type '%s'", apperrors.ErrValidation, txType)
		}
		filter.Types = []domain.TransactionType{txType}
		report.Type = &txType
	}

	txns, err := s.find(ctx, filter, "trends", slog.Int("days", days))
	if err != nil {
		return nil, err
	}

	report.TotalTransactions = len(txns)
	report.TypeStatistics = map[domain.TransactionType]*domain.TypeTotals{
		domain.Deposit:           {Total: decimal.Zero},
		domain.Withdrawal:        {Total: decimal.Zero},
		domain.InternalTransfer:  {Total: decimal.Zero},
		domain.InterbankTransfer: {Total: decimal.Zero},
	}
	trends := make(map[string]*domain.DailyTrend)
	for _, t := range txns {
		if totals, ok := report.TypeStatistics[t.Type]; ok {
			totals.Add(t.Amount)
		}

		date := t.Timestamp.In(s.loc).Format(reportDateLayout)
		day, ok := trends[date]
		if !ok {
			day = &domain.DailyTrend{Date: date, TotalAmount: decimal.Zero}
			trends[date] = day
		}
		day.Count++
		day.TotalAmount = day.TotalAmount.Add(t.Amount)
		switch {
		case t.Type == domain.Deposit:
			day.Deposits++
		case t.Type == domain.Withdrawal:
			day.Withdrawals++
		case t.Type.IsTransfer():
			day.Transfers++
		}
	}

	report.Trends = make([]domain.DailyTrend, 0, len(trends))
	for _, day := range trends {
		report.Trends = append(report.Trends, *day)
	}
	slices.SortFunc(report.Trends, func(a, b domain.DailyTrend) int { return cmp.Compare(a.Date, b.Date) })
	return report, nil
}

func (s *reportService) find(ctx context.Context, filter domain.TransactionFilter, report string, attrs ...any) ([]domain.Transaction, error) {
	txns, err := s.ledger.FindTransactions(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to load transactions for "+report, attrs...)
		return nil, err
	}
	return txns, nil
}

// periodFilter turns optional start and end dates into a filter over reported
// statuses. The returned period echoes the bounds, with EndDate exclusive.
func (s *reportService) periodFilter(startDate, endDate string) (domain.ReportPeriod, domain.TransactionFilter, error) {
	filter := domain.TransactionFilter{Statuses: reportedStatuses}
	var period domain.ReportPeriod

	from, err := s.parseReportDate("startDate", startDate, false)
	if err != nil {
		return period, filter, err
	}
	to, err := s.parseReportDate("endDate", endDate, true)
	if err != nil {
		return period, filter, err
	}
	if !from.IsZero() && !to.IsZero() && !to.After(from) {
		return period, filter, fmt.Errorf("%w: endDate must not be before startDate", apperrors.ErrValidation)
	}

	if !from.IsZero() {
		filter.From = from
		period.StartDate = &from
	}
	if !to.IsZero() {
		filter.To = to
		period.EndDate = &to
	}
	return period, filter, nil
}

// parseReportDate accepts YYYY-MM-DD in the service's zone or an RFC 3339
// instant. End bounds are inclusive for the caller and exclusive in the result.
func (s *reportService) parseReportDate(name, raw string, end bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if day, err := time.ParseInLocation(reportDateLayout, raw, s.loc); err == nil {
		if end {
			return day.AddDate(0, 0, 1), nil
		}
		return day, nil
	}
	instant, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD or RFC 3339, got '%s'", apperrors.ErrValidation, name, raw)
	}
	if end {
		return instant.Add(time.Nanosecond), nil
	}
	return instant, nil
}

// average is total/count rounded to cents, zero when count is zero.
func average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(domain.MoneyScale)
}
