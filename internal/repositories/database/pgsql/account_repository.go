package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/models"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, balance, currency, status, daily_withdrawal_limit, daily_transfer_limit,
	single_transaction_limit, fee_waivers, version, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool DBPool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountStore
var _ portsrepo.AccountStore = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Balance,
		&m.Currency,
		&m.Status,
		&m.DailyWithdrawalLimit,
		&m.DailyTransferLimit,
		&m.SingleTransactionLimit,
		&m.FeeWaivers,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	if account.Status == "" {
		account.Status = domain.AccountActive
	}
	m := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.AccountID,
		m.Balance,
		m.Currency,
		m.Status,
		m.DailyWithdrawalLimit,
		m.DailyTransferLimit,
		m.SingleTransactionLimit,
		m.FeeWaivers,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// GetAccount retrieves an account by its ID.
func (r *PgxAccountRepository) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`

	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return acc, nil
}

// ApplyBalanceDelta changes the balance in a single conditional UPDATE. Debits only
// match while the balance covers them, so the check and the write cannot interleave
// with another writer.
func (r *PgxAccountRepository) ApplyBalanceDelta(ctx context.Context, accountID string, amount decimal.Decimal, direction domain.BalanceDirection) (*domain.Account, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: balance delta must not be negative", apperrors.ErrValidation)
	}

	var query string
	switch direction {
	case domain.BalanceCredit:
		query = `
			UPDATE accounts
			SET balance = balance + $2, version = version + 1, last_updated_at = NOW(), last_updated_by = $3
			WHERE account_id = $1
			RETURNING ` + accountColumns + `;`
	case domain.BalanceDebit:
		query = `
			UPDATE accounts
			SET balance = balance - $2, version = version + 1, last_updated_at = NOW(), last_updated_by = $3
			WHERE account_id = $1 AND balance >= $2
			RETURNING ` + accountColumns + `;`
	default:
		return nil, fmt.Errorf("%w: unknown balance direction '%s'", apperrors.ErrValidation, direction)
	}

	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID, amount, domain.SystemActor))
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to apply %s of %s to account %s: %w", direction, amount.String(), accountID, err)
	}

	// No row matched: either the account is missing or the debit is not covered.
	if _, getErr := r.GetAccount(ctx, accountID); getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("%w: account %s cannot cover %s", apperrors.ErrInsufficientBalance, accountID, amount.StringFixed(2))
}

// UpdateCustomLimits replaces the limit override columns.
func (r *PgxAccountRepository) UpdateCustomLimits(ctx context.Context, accountID string, limits domain.CustomLimits) (*domain.Account, error) {
	withdrawal, transfer, single := mapping.ToNullLimits(limits)
	query := `
		UPDATE accounts
		SET daily_withdrawal_limit = $2, daily_transfer_limit = $3, single_transaction_limit = $4,
			version = version + 1, last_updated_at = NOW(), last_updated_by = $5
		WHERE account_id = $1
		RETURNING ` + accountColumns + `;`

	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID, withdrawal, transfer, single, domain.SystemActor))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to update limits of account %s: %w", accountID, err)
	}
	return acc, nil
}

// SetFeeWaivers replaces the fee_waivers column.
func (r *PgxAccountRepository) SetFeeWaivers(ctx context.Context, accountID string, types []domain.TransactionType) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET fee_waivers = $2, version = version + 1, last_updated_at = NOW(), last_updated_by = $3
		WHERE account_id = $1
		RETURNING ` + accountColumns + `;`

	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID, mapping.ToFeeWaiverColumn(types), domain.SystemActor))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to update fee waivers of account %s: %w", accountID, err)
	}
	return acc, nil
}
