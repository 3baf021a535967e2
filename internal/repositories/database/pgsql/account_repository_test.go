package pgsql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var auditTime = time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

var accountCols = []string{
	"account_id", "balance", "currency", "status", "daily_withdrawal_limit", "daily_transfer_limit",
	"single_transaction_limit", "fee_waivers", "version", "created_at", "created_by", "last_updated_at", "last_updated_by",
}

func accountRows(id string, balance decimal.Decimal, waivers ...string) *pgxmock.Rows {
	if waivers == nil {
		waivers = []string{}
	}
	return pgxmock.NewRows(accountCols).AddRow(
		id, balance, "TND", "active", nil, nil, nil, waivers, int64(3),
		auditTime, domain.SystemActor, auditTime, domain.SystemActor,
	)
}

// anyArgs matches n arguments of any value.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

type AccountRepositoryTestSuite struct {
	suite.Suite
	ctx  context.Context
	pool pgxmock.PgxPoolIface
	repo *PgxAccountRepository
}

func (s *AccountRepositoryTestSuite) SetupTest() {
	pool, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.ctx = context.Background()
	s.pool = pool
	s.repo = newPgxAccountRepository(pool)
}

func (s *AccountRepositoryTestSuite) TearDownTest() {
	s.NoError(s.pool.ExpectationsWereMet())
	s.pool.Close()
}

func TestAccountRepository(t *testing.T) {
	suite.Run(t, new(AccountRepositoryTestSuite))
}

func (s *AccountRepositoryTestSuite) TestApplyBalanceDelta_DebitIsConditional() {
	amount := decimal.NewFromInt(100)
	s.pool.ExpectQuery(regexp.QuoteMeta("SET balance = balance - $2")+".*"+regexp.QuoteMeta("WHERE account_id = $1 AND balance >= $2")).
		WithArgs("A", amount, domain.SystemActor).
		WillReturnRows(accountRows("A", decimal.NewFromInt(400)))

	acc, err := s.repo.ApplyBalanceDelta(s.ctx, "A", amount, domain.BalanceDebit)
	s.Require().NoError(err)
	s.True(acc.Balance.Equal(decimal.NewFromInt(400)))
	s.Equal(int64(3), acc.Version)
	s.Empty(acc.FeeWaivers)
}

func (s *AccountRepositoryTestSuite) TestApplyBalanceDelta_UncoveredDebit() {
	amount := decimal.NewFromInt(1000)
	s.pool.ExpectQuery(regexp.QuoteMeta("AND balance >= $2")).
		WithArgs("A", amount, domain.SystemActor).
		WillReturnRows(pgxmock.NewRows(accountCols))
	s.pool.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE account_id = $1")).
		WithArgs("A").
		WillReturnRows(accountRows("A", decimal.NewFromInt(50)))

	acc, err := s.repo.ApplyBalanceDelta(s.ctx, "A", amount, domain.BalanceDebit)
	s.ErrorIs(err, apperrors.ErrInsufficientBalance)
	s.Nil(acc)
}

func (s *AccountRepositoryTestSuite) TestApplyBalanceDelta_MissingAccount() {
	amount := decimal.NewFromInt(10)
	s.pool.ExpectQuery(regexp.QuoteMeta("SET balance = balance + $2")).
		WithArgs("ghost", amount, domain.SystemActor).
		WillReturnRows(pgxmock.NewRows(accountCols))
	s.pool.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE account_id = $1")).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(accountCols))

	_, err := s.repo.ApplyBalanceDelta(s.ctx, "ghost", amount, domain.BalanceCredit)
	s.ErrorIs(err, apperrors.ErrAccountNotFound)
}

func (s *AccountRepositoryTestSuite) TestApplyBalanceDelta_RejectsBadInput() {
	_, err := s.repo.ApplyBalanceDelta(s.ctx, "A", decimal.NewFromInt(-1), domain.BalanceCredit)
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.repo.ApplyBalanceDelta(s.ctx, "A", decimal.NewFromInt(1), domain.BalanceDirection("sideways"))
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *AccountRepositoryTestSuite) TestSaveAccount_UniqueViolation() {
	s.pool.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs(anyArgs(13)...).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	err := s.repo.SaveAccount(s.ctx, domain.Account{AccountID: "A", Balance: decimal.Zero, Currency: "TND"})
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *AccountRepositoryTestSuite) TestSaveAccount_DefaultsStatusAndEmptyWaivers() {
	s.pool.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs("A", decimal.Zero, "TND", "active", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			[]string{}, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.repo.SaveAccount(s.ctx, domain.Account{AccountID: "A", Balance: decimal.Zero, Currency: "TND"})
	s.NoError(err)
}

func (s *AccountRepositoryTestSuite) TestSetFeeWaivers() {
	s.pool.ExpectQuery(regexp.QuoteMeta("SET fee_waivers = $2")).
		WithArgs("A", []string{"withdrawal"}, domain.SystemActor).
		WillReturnRows(accountRows("A", decimal.NewFromInt(10), "withdrawal"))
	s.pool.ExpectQuery(regexp.QuoteMeta("SET fee_waivers = $2")).
		WithArgs("ghost", []string{}, domain.SystemActor).
		WillReturnRows(pgxmock.NewRows(accountCols))

	acc, err := s.repo.SetFeeWaivers(s.ctx, "A", []domain.TransactionType{domain.Withdrawal})
	s.Require().NoError(err)
	s.True(acc.WaivesFees(domain.Withdrawal))

	_, err = s.repo.SetFeeWaivers(s.ctx, "ghost", nil)
	s.ErrorIs(err, apperrors.ErrAccountNotFound)
}

func TestGetAccount_MapsAuditColumns(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE account_id = $1")).
		WithArgs("A").
		WillReturnRows(accountRows("A", decimal.NewFromInt(5)))

	acc, err := newPgxAccountRepository(pool).GetAccount(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountActive, acc.Status)
	assert.Nil(t, acc.CustomLimits)
	assert.Equal(t, auditTime, acc.CreatedAt)
	assert.Equal(t, domain.SystemActor, acc.LastUpdatedBy)
	assert.NoError(t, pool.ExpectationsWereMet())
}
