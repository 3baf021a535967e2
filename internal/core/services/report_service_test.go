package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portssvc "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/services"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/services"
	"github.com/stretchr/testify/suite"
)

type ReportServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	stores  *stores
	service portssvc.ReportSvcFacade
}

func (s *ReportServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.stores = newStores()
	s.service = services.NewReportService(s.stores.accounts, s.stores.ledger, fixedClock, time.UTC)

	s.stores.seed(s.T(), "A", "1000", domain.AccountActive)
	s.stores.seed(s.T(), "B", "500", domain.AccountActive)

	// March 2024, relative to fixedNow (the 12th at 10:00 UTC).
	s.insert("T1", domain.Deposit, "", "A", "300", domain.StatusCompleted, day(1, 9))
	s.insert("T2", domain.Withdrawal, "A", "", "100", domain.StatusCompleted, day(5, 14))
	s.insert("T3", domain.InternalTransfer, "A", "B", "50", domain.StatusCompleted, day(5, 16))
	s.insert("T4", domain.Deposit, "", "B", "999", domain.StatusFailed, day(6, 8))
	s.insert("T5", domain.InterbankTransfer, "B", "EXT", "20", domain.StatusCompleted, day(12, 9))
	// February, outside the monthly window.
	s.insert("T0", domain.Deposit, "", "A", "40", domain.StatusCompleted, time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC))
}

func TestReportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportServiceTestSuite))
}

func day(d, hour int) time.Time {
	return time.Date(2024, 3, d, hour, 0, 0, 0, time.UTC)
}

func (s *ReportServiceTestSuite) insert(id string, txType domain.TransactionType, from, to, amount string, status domain.TransactionStatus, at time.Time) {
	_, err := s.stores.ledger.Insert(s.ctx, domain.Transaction{
		TransactionID: id,
		Type:          txType,
		FromAccount:   from,
		ToAccount:     to,
		Amount:        dec(amount),
		Currency:      "TND",
		Status:        status,
		Timestamp:     at,
	})
	s.Require().NoError(err)
}

func (s *ReportServiceTestSuite) TestSummary_AllTime() {
	summary, err := s.service.Summary(s.ctx, "", "")
	s.Require().NoError(err)

	s.Equal(5, summary.TotalTransactions, "failed rows are excluded")
	s.Equal(2, summary.TotalDeposits)
	s.Equal(1, summary.TotalWithdrawals)
	s.Equal(2, summary.TotalTransfers)
	s.True(summary.TotalAmount.Equal(dec("510")))
	s.True(summary.TotalDepositAmount.Equal(dec("340")))
	s.True(summary.TotalTransferAmount.Equal(dec("70")))
	s.True(summary.AverageTransactionAmount.Equal(dec("102")))
	s.Nil(summary.Period.StartDate)
	s.Nil(summary.Period.EndDate)
}

func (s *ReportServiceTestSuite) TestSummary_EndDateCoversWholeDay() {
	summary, err := s.service.Summary(s.ctx, "2024-03-01", "2024-03-05")
	s.Require().NoError(err)

	s.Equal(3, summary.TotalTransactions, "T3 at 16:00 on the end date counts")
	s.Require().NotNil(summary.Period.EndDate)
	s.Equal(day(6, 0), *summary.Period.EndDate)
}

func (s *ReportServiceTestSuite) TestSummary_RFC3339Bounds() {
	summary, err := s.service.Summary(s.ctx, "2024-03-05T14:00:00Z", "2024-03-05T16:00:00Z")
	s.Require().NoError(err)
	s.Equal(2, summary.TotalTransactions, "both bounds are inclusive")
}

func (s *ReportServiceTestSuite) TestSummary_InvalidDates() {
	tests := []struct {
		name, start, end string
	}{
		{"garbage start", "yesterday", ""},
		{"garbage end", "", "2024-13-01"},
		{"end before start", "2024-03-10", "2024-03-01"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.Summary(s.ctx, tt.start, tt.end)
			s.ErrorIs(err, apperrors.ErrValidation)
		})
	}
}

func (s *ReportServiceTestSuite) TestAccountStatistics() {
	stats, err := s.service.AccountStatistics(s.ctx, "A", "2024-03-01", "")
	s.Require().NoError(err)

	s.Equal("A", stats.AccountID)
	s.True(stats.AccountBalance.Equal(dec("1000")))
	s.Equal(3, stats.TotalTransactions)
	s.Equal(1, stats.IncomingTransactions)
	s.Equal(2, stats.OutgoingTransactions)
	s.True(stats.TotalIncoming.Equal(dec("300")))
	s.True(stats.TotalOutgoing.Equal(dec("150")))
	s.True(stats.NetFlow.Equal(dec("150")))
	s.Equal(1, stats.Deposits)
	s.Equal(1, stats.Withdrawals)
	s.Equal(1, stats.Transfers)
	s.True(stats.AverageOutgoing.Equal(dec("75")))
}

func (s *ReportServiceTestSuite) TestAccountStatistics_ReversalNetsOut() {
	s.stores.seed(s.T(), "R", "0", domain.AccountActive)
	svc := services.NewTransactionService(testConfig(), s.stores.provider(), services.WithClock(fixedClock))

	processed, err := svc.Process(s.ctx, deposit("R", "500"))
	s.Require().NoError(err)
	_, err = svc.Reverse(s.ctx, processed.Transaction.TransactionID)
	s.Require().NoError(err)

	stats, err := s.service.AccountStatistics(s.ctx, "R", "", "")
	s.Require().NoError(err)
	s.Equal(2, stats.TotalTransactions, "the reversed original and its mirror")
	s.True(stats.NetFlow.IsZero())
	s.True(stats.AccountBalance.IsZero())
}

func (s *ReportServiceTestSuite) TestAccountStatistics_UnknownAccount() {
	_, err := s.service.AccountStatistics(s.ctx, "ghost", "", "")
	s.ErrorIs(err, apperrors.ErrAccountNotFound)
}

func (s *ReportServiceTestSuite) TestMonthly() {
	stats, err := s.service.Monthly(s.ctx, 2024, 3)
	s.Require().NoError(err)

	s.Equal("March", stats.MonthName)
	s.Equal(4, stats.TotalTransactions)
	s.True(stats.TotalAmount.Equal(dec("470")))
	s.Equal(1, stats.Deposits.Count)
	s.Equal(1, stats.Withdrawals.Count)
	s.Equal(2, stats.Transfers.Count)
	s.True(stats.Transfers.Total.Equal(dec("70")))

	s.Require().Len(stats.DailyBreakdown, 3)
	s.Equal("2024-03-01", stats.DailyBreakdown[0].Date)
	s.Equal("2024-03-05", stats.DailyBreakdown[1].Date)
	s.Equal(2, stats.DailyBreakdown[1].Count)
	s.True(stats.DailyBreakdown[1].Amount.Equal(dec("150")))
	s.Equal("2024-03-12", stats.DailyBreakdown[2].Date)
}

func (s *ReportServiceTestSuite) TestMonthly_DefaultsToCurrentMonth() {
	stats, err := s.service.Monthly(s.ctx, 0, 0)
	s.Require().NoError(err)
	s.Equal(2024, stats.Year)
	s.Equal(3, stats.Month)

	feb, err := s.service.Monthly(s.ctx, 2024, 2)
	s.Require().NoError(err)
	s.Equal(1, feb.TotalTransactions)
}

func (s *ReportServiceTestSuite) TestMonthly_InvalidMonth() {
	_, err := s.service.Monthly(s.ctx, 2024, 13)
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.service.Monthly(s.ctx, -5, 1)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ReportServiceTestSuite) TestTrends_Window() {
	report, err := s.service.Trends(s.ctx, 8, "")
	s.Require().NoError(err)

	// Eight days back from the 12th starts on the 5th.
	s.Equal(8, report.Days)
	s.Nil(report.Type)
	s.Equal(3, report.TotalTransactions)
	s.Require().Len(report.Trends, 2)
	s.Equal("2024-03-05", report.Trends[0].Date)
	s.Equal(1, report.Trends[0].Withdrawals)
	s.Equal(1, report.Trends[0].Transfers)
	s.Equal("2024-03-12", report.Trends[1].Date)
	s.Len(report.TypeStatistics, 4)
	s.Equal(0, report.TypeStatistics[domain.Deposit].Count)
	s.True(report.TypeStatistics[domain.InterbankTransfer].Total.Equal(dec("20")))
}

func (s *ReportServiceTestSuite) TestTrends_TypeFilterAndDefaults() {
	report, err := s.service.Trends(s.ctx, 0, domain.Deposit)
	s.Require().NoError(err)
	s.Equal(30, report.Days)
	s.Require().NotNil(report.Type)
	s.Equal(domain.Deposit, *report.Type)
	s.Equal(2, report.TotalTransactions, "February 28 is inside thirty days")

	_, err = s.service.Trends(s.ctx, 367, "")
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.service.Trends(s.ctx, 7, "cheque")
	s.ErrorIs(err, apperrors.ErrValidation)
}
