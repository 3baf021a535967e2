package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portssvc "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/services"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/services"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	cfg     *config.Config
	stores  *stores
	service portssvc.TransactionSvcFacade
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.cfg = testConfig()
	s.stores = newStores()
	s.service = services.NewTransactionService(s.cfg, s.stores.provider(), services.WithClock(fixedClock))
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func deposit(to, amount string) domain.Transaction {
	return domain.Transaction{Type: domain.Deposit, ToAccount: to, Amount: dec(amount)}
}

func withdrawal(from, amount string) domain.Transaction {
	return domain.Transaction{Type: domain.Withdrawal, FromAccount: from, Amount: dec(amount)}
}

func (s *TransactionServiceTestSuite) TestDeposit() {
	s.stores.seed(s.T(), "A", "0", domain.AccountActive)

	result, err := s.service.Process(s.ctx, deposit("A", "500"))
	s.Require().NoError(err)
	s.True(result.Success)
	s.Equal(domain.StatusCompleted, result.Transaction.Status)
	s.Equal("TND", result.Transaction.Currency, "default currency applies")
	s.True(result.Transaction.Fees.IsZero())
	s.Equal(domain.SecurityLow, result.Transaction.SecurityLevel)
	s.True(s.stores.balance(s.T(), "A").Equal(dec("500")))
}

func (s *TransactionServiceTestSuite) TestInternalTransfer_ConservesMoney() {
	s.stores.seed(s.T(), "A", "1000", domain.AccountActive)
	s.stores.seed(s.T(), "B", "0", domain.AccountActive)

	result, err := s.service.Process(s.ctx, domain.Transaction{
		Type: domain.InternalTransfer, FromAccount: "A", ToAccount: "B", Amount: dec("100"),
	})
	s.Require().NoError(err)
	s.True(result.Transaction.Fees.Equal(dec("0.5")))
	s.True(result.Transaction.Commission.Equal(dec("0.25")))

	a, b := s.stores.balance(s.T(), "A"), s.stores.balance(s.T(), "B")
	s.True(a.Equal(dec("899.5")))
	s.True(b.Equal(dec("100")))
	s.True(a.Add(b).Add(result.Transaction.Fees).Equal(dec("1000")))
}

func (s *TransactionServiceTestSuite) TestGuardRejections_WriteNoLedgerRow() {
	s.stores.seed(s.T(), "A", "1000", domain.AccountActive)
	s.stores.seed(s.T(), "F", "1000", domain.AccountFrozen)
	s.stores.seed(s.T(), "C", "1000", domain.AccountClosed)

	tests := []struct {
		name string
		txn  domain.Transaction
		want error
	}{
		{"frozen destination", domain.Transaction{Type: domain.InternalTransfer, FromAccount: "A", ToAccount: "F", Amount: dec("10")}, apperrors.ErrAccountBlocked},
		{"closed source", withdrawal("C", "10"), apperrors.ErrAccountBlocked},
		{"frozen deposit target", deposit("F", "10"), apperrors.ErrAccountBlocked},
		{"missing source", withdrawal("ghost", "10"), apperrors.ErrAccountNotFound},
		{"same account transfer", domain.Transaction{Type: domain.InternalTransfer, FromAccount: "A", ToAccount: "A", Amount: dec("10")}, apperrors.ErrValidation},
		{"zero amount", deposit("A", "0"), apperrors.ErrValidation},
		{"sub-cent deposit", deposit("A", "0.004"), apperrors.ErrValidation},
		{"three decimal withdrawal", withdrawal("A", "10.125"), apperrors.ErrValidation},
		{"unknown type", domain.Transaction{Type: "cheque", ToAccount: "A", Amount: dec("10")}, apperrors.ErrValidation},
		{"below minimum", withdrawal("A", "0.5"), apperrors.ErrLimitExceeded},
		{"above single limit", withdrawal("A", "2000.01"), apperrors.ErrLimitExceeded},
		{"below minimum balance", withdrawal("A", "995"), apperrors.ErrLimitExceeded},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			result, err := s.service.Process(s.ctx, tt.txn)
			s.ErrorIs(err, tt.want)
			s.Nil(result)
		})
	}

	txns, err := s.stores.ledger.FindTransactions(s.ctx, domain.TransactionFilter{})
	s.Require().NoError(err)
	s.Empty(txns)
	s.True(s.stores.balance(s.T(), "A").Equal(dec("1000")))
}

func (s *TransactionServiceTestSuite) TestDailyWithdrawalBoundary() {
	s.stores.seed(s.T(), "A", "20000", domain.AccountActive)
	s.stores.seed(s.T(), "B", "20000", domain.AccountActive)

	for _, amount := range []string{"2000", "2000", "1000"} {
		_, err := s.service.Process(s.ctx, withdrawal("A", amount))
		s.Require().NoError(err, "withdrawal of %s", amount)
	}
	s.True(s.stores.balance(s.T(), "A").Equal(dec("15000")), "exactly the daily ceiling succeeds")

	for _, amount := range []string{"2000", "2000"} {
		_, err := s.service.Process(s.ctx, withdrawal("B", amount))
		s.Require().NoError(err)
	}
	_, err := s.service.Process(s.ctx, withdrawal("B", "1000.01"))
	s.ErrorIs(err, apperrors.ErrLimitExceeded, "one cent over the ceiling fails")
	s.True(s.stores.balance(s.T(), "B").Equal(dec("16000")))
}

func (s *TransactionServiceTestSuite) TestDailyLimitCountsOnlyOutgoingOfTheClass() {
	s.stores.seed(s.T(), "A", "20000", domain.AccountActive)
	s.stores.seed(s.T(), "B", "20000", domain.AccountActive)

	// Incoming transfers and deposits do not consume A's transfer allowance.
	for i := 0; i < 6; i++ {
		_, err := s.service.Process(s.ctx, domain.Transaction{Type: domain.InternalTransfer, FromAccount: "B", ToAccount: "A", Amount: dec("1500")})
		s.Require().NoError(err)
	}
	_, err := s.service.Process(s.ctx, withdrawal("A", "2000"))
	s.Require().NoError(err)

	limits, err := s.service.GetLimits(s.ctx, "A")
	s.Require().NoError(err)
	s.True(limits.DailyTransfer.Used.IsZero())
	s.True(limits.DailyWithdrawal.Used.Equal(dec("2000")))
	s.True(limits.DailyWithdrawal.Remaining.Equal(dec("3000")))

	limits, err = s.service.GetLimits(s.ctx, "B")
	s.Require().NoError(err)
	s.True(limits.DailyTransfer.Used.Equal(dec("9000")))
	s.True(limits.DailyTransfer.Remaining.Equal(dec("1000")))
}

func (s *TransactionServiceTestSuite) TestCustomLimitsOnlyRaise() {
	s.stores.seed(s.T(), "A", "20000", domain.AccountActive)

	_, err := s.service.Process(s.ctx, withdrawal("A", "2500"))
	s.ErrorIs(err, apperrors.ErrLimitExceeded)

	limits, err := s.service.UpdateLimits(s.ctx, "A", domain.CustomLimits{SingleTransaction: decPtr("3000")})
	s.Require().NoError(err)
	s.True(limits.SingleTransaction.Equal(dec("3000")))

	_, err = s.service.Process(s.ctx, withdrawal("A", "2500"))
	s.Require().NoError(err)

	limits, err = s.service.UpdateLimits(s.ctx, "A", domain.CustomLimits{SingleTransaction: decPtr("100")})
	s.Require().NoError(err)
	s.True(limits.SingleTransaction.Equal(dec("2000")), "a lower custom limit keeps the global default")

	_, err = s.service.UpdateLimits(s.ctx, "A", domain.CustomLimits{DailyTransfer: decPtr("-1")})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.UpdateLimits(s.ctx, "ghost", domain.CustomLimits{})
	s.ErrorIs(err, apperrors.ErrAccountNotFound)
}

func (s *TransactionServiceTestSuite) TestFraudFlagDoesNotBlock() {
	s.stores.seed(s.T(), "A", "0", domain.AccountActive)

	result, err := s.service.Process(s.ctx, deposit("A", "15000"))
	s.Require().NoError(err)
	s.Equal(domain.StatusCompleted, result.Transaction.Status)
	s.Equal(domain.SecurityHigh, result.Transaction.SecurityLevel)
	s.True(result.Transaction.FraudFlag)
	s.Contains(result.Transaction.FraudFlags, domain.FlagSuspiciousAmount)
	s.True(s.stores.balance(s.T(), "A").Equal(dec("15000")))

	suspicious, err := s.service.ListSuspicious(s.ctx, "A")
	s.Require().NoError(err)
	s.Len(suspicious, 1)
}

func (s *TransactionServiceTestSuite) TestReverse() {
	s.stores.seed(s.T(), "A", "0", domain.AccountActive)

	processed, err := s.service.Process(s.ctx, deposit("A", "500"))
	s.Require().NoError(err)
	id := processed.Transaction.TransactionID

	result, err := s.service.Reverse(s.ctx, id)
	s.Require().NoError(err)
	s.True(result.Success)
	s.Equal(domain.StatusReversed, result.OriginalTransaction.Status)
	s.Equal(domain.Withdrawal, result.ReversalTransaction.Type)
	s.Equal("A", result.ReversalTransaction.FromAccount)
	s.Equal("Reversal of "+id, result.ReversalTransaction.Description)
	s.Require().NotNil(result.ReversalTransaction.Reference)
	s.Equal(id, *result.ReversalTransaction.Reference)
	s.True(s.stores.balance(s.T(), "A").IsZero())

	_, err = s.service.Reverse(s.ctx, id)
	s.ErrorIs(err, apperrors.ErrAlreadyReversed)
	s.True(s.stores.balance(s.T(), "A").IsZero(), "a second reversal moves nothing")

	_, err = s.service.Reverse(s.ctx, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *TransactionServiceTestSuite) TestReverseTransfer_SwapsAccountsAndKeepsFees() {
	s.stores.seed(s.T(), "A", "1000", domain.AccountActive)
	s.stores.seed(s.T(), "B", "0", domain.AccountActive)

	processed, err := s.service.Process(s.ctx, domain.Transaction{Type: domain.InterbankTransfer, FromAccount: "A", ToAccount: "B", Amount: dec("100")})
	s.Require().NoError(err)
	s.True(s.stores.balance(s.T(), "A").Equal(dec("898")))

	result, err := s.service.Reverse(s.ctx, processed.Transaction.TransactionID)
	s.Require().NoError(err)
	s.Equal(domain.InterbankTransfer, result.ReversalTransaction.Type)
	s.Equal("B", result.ReversalTransaction.FromAccount)
	s.Equal("A", result.ReversalTransaction.ToAccount)
	s.True(result.ReversalTransaction.Fees.IsZero())
	s.True(s.stores.balance(s.T(), "A").Equal(dec("998")))
	s.True(s.stores.balance(s.T(), "B").IsZero())
}

func (s *TransactionServiceTestSuite) TestReverseFailedTransaction() {
	s.stores.seed(s.T(), "A", "100", domain.AccountActive)
	_, err := s.stores.ledger.Insert(s.ctx, domain.Transaction{
		TransactionID: "t-failed", Type: domain.Deposit, ToAccount: "A", Amount: dec("5"), Status: domain.StatusFailed, Timestamp: fixedNow,
	})
	s.Require().NoError(err)

	_, err = s.service.Reverse(s.ctx, "t-failed")
	s.ErrorIs(err, apperrors.ErrNotCompleted)
}

func (s *TransactionServiceTestSuite) TestConcurrentReversals_OnlyOneWins() {
	s.stores.seed(s.T(), "A", "0", domain.AccountActive)
	processed, err := s.service.Process(s.ctx, deposit("A", "500"))
	s.Require().NoError(err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, already := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.Reverse(s.ctx, processed.Transaction.TransactionID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, apperrors.ErrAlreadyReversed):
				already++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, wins)
	s.Equal(9, already)
	s.True(s.stores.balance(s.T(), "A").IsZero())
}

func (s *TransactionServiceTestSuite) TestConcurrentWithdrawals_NeverBreachMinimumBalance() {
	s.stores.seed(s.T(), "A", "1000", domain.AccountActive)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.service.Process(s.ctx, withdrawal("A", "100")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(9, succeeded)
	s.True(s.stores.balance(s.T(), "A").Equal(dec("100")))
}

func (s *TransactionServiceTestSuite) TestCommissions() {
	s.stores.seed(s.T(), "A", "1000", domain.AccountActive)
	s.stores.seed(s.T(), "B", "0", domain.AccountActive)

	_, err := s.service.Process(s.ctx, domain.Transaction{Type: domain.InternalTransfer, FromAccount: "A", ToAccount: "B", Amount: dec("100")})
	s.Require().NoError(err)
	_, err = s.service.Process(s.ctx, deposit("B", "50"))
	s.Require().NoError(err)

	for _, period := range []string{"all", "daily", "monthly", "2024-03"} {
		report, err := s.service.GetCommissions(s.ctx, period)
		s.Require().NoError(err, period)
		s.Equal(1, report.TransactionCount, period)
		s.True(report.TotalCommission.Equal(dec("0.25")), period)
	}

	report, err := s.service.GetCommissions(s.ctx, "2024-02")
	s.Require().NoError(err)
	s.Zero(report.TransactionCount)

	_, err = s.service.GetCommissions(s.ctx, "last-week")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *TransactionServiceTestSuite) TestListByAccount() {
	s.stores.seed(s.T(), "A", "0", domain.AccountActive)
	for i := 0; i < 3; i++ {
		_, err := s.service.Process(s.ctx, deposit("A", "10"))
		s.Require().NoError(err)
	}

	page, next, err := s.service.ListByAccount(s.ctx, "A", 2, nil)
	s.Require().NoError(err)
	s.Len(page, 2)
	s.Require().NotNil(next)

	page, next, err = s.service.ListByAccount(s.ctx, "A", 2, next)
	s.Require().NoError(err)
	s.Len(page, 1)
	s.Nil(next)

	txn, err := s.service.GetTransaction(s.ctx, page[0].TransactionID)
	s.Require().NoError(err)
	s.Equal(page[0].TransactionID, txn.TransactionID)
}

func TestTransactionService_CategoryEnrichment(t *testing.T) {
	ctx := context.Background()
	st := newStores()
	st.seed(t, "A", "0", domain.AccountActive)

	resolver := new(MockCategoryResolver)
	resolver.On("Resolve", mock.Anything, "food").Return(&domain.Category{ID: "food", Name: "Food"}, nil)
	resolver.On("Resolve", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound)
	resolver.On("Resolve", mock.Anything, "down").Return(nil, apperrors.ErrUnavailable)

	svc := services.NewTransactionService(testConfig(), st.provider(),
		services.WithClock(fixedClock),
		services.WithCategoryResolver(resolver))

	food := "food"
	txn := deposit("A", "10")
	txn.CategoryID = &food
	result, err := svc.Process(ctx, txn)
	require.NoError(t, err)
	require.NotNil(t, result.Transaction.CategoryName)
	assert.Equal(t, "Food", *result.Transaction.CategoryName)

	ghost := "ghost"
	txn.CategoryID = &ghost
	_, err = svc.Process(ctx, txn)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	down := "down"
	txn.CategoryID = &down
	_, err = svc.Process(ctx, txn)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)

	assert.True(t, st.balance(t, "A").Equal(dec("10")))
	resolver.AssertExpectations(t)
}

func TestTransactionService_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	st := newStores()
	st.seed(t, "A", "0", domain.AccountActive)

	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, domain.EventTransactionCompleted, mock.AnythingOfType("*domain.Transaction")).Return(nil).Once()
	publisher.On("Publish", mock.Anything, domain.EventTransactionReversed, mock.AnythingOfType("*domain.Transaction")).Return(errors.New("redis down")).Once()

	svc := services.NewTransactionService(testConfig(), st.provider(),
		services.WithClock(fixedClock),
		services.WithEventPublisher(publisher))

	result, err := svc.Process(ctx, deposit("A", "10"))
	require.NoError(t, err)

	_, err = svc.Reverse(ctx, result.Transaction.TransactionID)
	require.NoError(t, err, "a publish failure never fails the request")

	publisher.AssertExpectations(t)
}

func TestTransactionService_AssessFraudAndFees(t *testing.T) {
	ctx := context.Background()
	st := newStores()
	svc := services.NewTransactionService(testConfig(), st.provider(), services.WithClock(fixedClock))

	assessment, err := svc.AssessFraud(ctx, domain.Transaction{Type: domain.Deposit, ToAccount: "A", Amount: dec("6000")})
	require.NoError(t, err)
	assert.Equal(t, domain.SecurityMedium, assessment.SecurityLevel)
	assert.False(t, assessment.FraudFlag)

	_, err = svc.AssessFraud(ctx, domain.Transaction{Type: "cheque", Amount: dec("1")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	fees := svc.CalculateFees(domain.InterbankTransfer, dec("250"))
	assert.True(t, fees.Fees.Equal(dec("5")))
	assert.True(t, fees.Commission.Equal(dec("2.5")))
	assert.True(t, fees.Total.Equal(dec("255")))
}

func (s *TransactionServiceTestSuite) TestUpdateDescription() {
	s.stores.seed(s.T(), "A", "0", domain.AccountActive)
	processed, err := s.service.Process(s.ctx, deposit("A", "500"))
	s.Require().NoError(err)
	id := processed.Transaction.TransactionID

	updated, err := s.service.UpdateDescription(s.ctx, id, "  March salary ")
	s.Require().NoError(err)
	s.Equal("March salary", updated.Description)
	s.True(updated.Amount.Equal(dec("500")), "only the description changes")
	s.Equal(domain.StatusCompleted, updated.Status)

	_, err = s.service.UpdateDescription(s.ctx, id, strings.Repeat("é", 256))
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.UpdateDescription(s.ctx, "missing", "x")
	s.ErrorIs(err, apperrors.ErrNotFound)

	stored, err := s.stores.ledger.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("March salary", stored.Description)
}

func (s *TransactionServiceTestSuite) TestFeeWaiver_WaivedTransferChargesNoFee() {
	s.stores.seed(s.T(), "A", "1000", domain.AccountActive)
	s.stores.seed(s.T(), "B", "0", domain.AccountActive)
	transferAB := domain.Transaction{Type: domain.InternalTransfer, FromAccount: "A", ToAccount: "B", Amount: dec("100")}

	waiver, err := s.service.WaiveFees(s.ctx, "A", nil)
	s.Require().NoError(err)
	s.Equal(domain.DefaultFeeWaivers, waiver.WaivedFees)

	result, err := s.service.Process(s.ctx, transferAB)
	s.Require().NoError(err)
	s.True(result.Transaction.Fees.IsZero())
	s.True(result.Transaction.Commission.IsZero())
	s.True(s.stores.balance(s.T(), "A").Equal(dec("900")))

	cleared, err := s.service.RemoveFeeWaivers(s.ctx, "A")
	s.Require().NoError(err)
	s.Empty(cleared.WaivedFees)
	s.NotNil(cleared.WaivedFees)

	result, err = s.service.Process(s.ctx, transferAB)
	s.Require().NoError(err)
	s.True(result.Transaction.Fees.Equal(dec("0.5")), "fees apply again once the waiver is gone")
	s.True(s.stores.balance(s.T(), "A").Equal(dec("799.5")))
}

func (s *TransactionServiceTestSuite) TestFeeWaiver_MergesAndValidates() {
	s.stores.seed(s.T(), "A", "1000", domain.AccountActive)

	_, err := s.service.WaiveFees(s.ctx, "A", []domain.TransactionType{domain.Withdrawal})
	s.Require().NoError(err)
	waiver, err := s.service.WaiveFees(s.ctx, "A", []domain.TransactionType{domain.InterbankTransfer, domain.Withdrawal})
	s.Require().NoError(err)
	s.Equal([]domain.TransactionType{domain.Withdrawal, domain.InterbankTransfer}, waiver.WaivedFees)

	got, err := s.service.GetFeeWaiver(s.ctx, "A")
	s.Require().NoError(err)
	s.Equal(waiver.WaivedFees, got.WaivedFees)

	_, err = s.service.WaiveFees(s.ctx, "A", []domain.TransactionType{domain.Deposit})
	s.ErrorIs(err, apperrors.ErrValidation, "deposits carry no fee")
	_, err = s.service.WaiveFees(s.ctx, "A", []domain.TransactionType{"cheque"})
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.service.WaiveFees(s.ctx, "ghost", nil)
	s.ErrorIs(err, apperrors.ErrAccountNotFound)
	_, err = s.service.GetFeeWaiver(s.ctx, "ghost")
	s.ErrorIs(err, apperrors.ErrAccountNotFound)
}
