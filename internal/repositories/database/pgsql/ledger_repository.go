package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/models"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/utils/mapping"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

const defaultPageSize = 20

const transactionColumns = `transaction_id, type, from_account, to_account, amount, currency, fees, commission,
	status, timestamp, description, security_level, fraud_flag, fraud_flags, category_id, category_name,
	reference, automation_rule_id, triggered_by, depth`

type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool DBPool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxLedgerRepository implements portsrepo.Ledger
var _ portsrepo.Ledger = (*PgxLedgerRepository)(nil)

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.Type,
		&m.FromAccount,
		&m.ToAccount,
		&m.Amount,
		&m.Currency,
		&m.Fees,
		&m.Commission,
		&m.Status,
		&m.Timestamp,
		&m.Description,
		&m.SecurityLevel,
		&m.FraudFlag,
		&m.FraudFlags,
		&m.CategoryID,
		&m.CategoryName,
		&m.Reference,
		&m.AutomationRuleID,
		&m.TriggeredBy,
		&m.Depth,
	)
	if err != nil {
		return nil, err
	}
	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()
	txns := make([]domain.Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txns, nil
}

// Insert records a new ledger row.
func (r *PgxLedgerRepository) Insert(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING ` + transactionColumns + `;`

	inserted, err := scanTransaction(r.Pool.QueryRow(ctx, query,
		m.TransactionID,
		m.Type,
		m.FromAccount,
		m.ToAccount,
		m.Amount,
		m.Currency,
		m.Fees,
		m.Commission,
		m.Status,
		m.Timestamp,
		m.Description,
		m.SecurityLevel,
		m.FraudFlag,
		m.FraudFlags,
		m.CategoryID,
		m.CategoryName,
		m.Reference,
		m.AutomationRuleID,
		m.TriggeredBy,
		m.Depth,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
		}
		return nil, fmt.Errorf("failed to insert transaction %s: %w", txn.TransactionID, err)
	}
	return inserted, nil
}

// UpdateStatus locks the row, checks the transition and writes the new status in
// one database transaction.
func (r *PgxLedgerRepository) UpdateStatus(ctx context.Context, transactionID string, next domain.TransactionStatus) (*domain.Transaction, error) {
	var updated *domain.Transaction
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM transactions WHERE transaction_id = $1 FOR UPDATE;`, transactionID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
			}
			return fmt.Errorf("failed to lock transaction %s: %w", transactionID, err)
		}
		if current := domain.TransactionStatus(status); !current.CanTransitionTo(next) {
			return fmt.Errorf("%w: transaction %s cannot move from %s to %s", apperrors.ErrConflict, transactionID, status, next)
		}

		updated, err = scanTransaction(tx.QueryRow(ctx,
			`UPDATE transactions SET status = $2 WHERE transaction_id = $1 RETURNING `+transactionColumns+`;`,
			transactionID, string(next)))
		if err != nil {
			return fmt.Errorf("failed to update status of transaction %s: %w", transactionID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateDescription rewrites the description column only.
func (r *PgxLedgerRepository) UpdateDescription(ctx context.Context, transactionID, description string) (*domain.Transaction, error) {
	txn, err := scanTransaction(r.Pool.QueryRow(ctx,
		`UPDATE transactions SET description = $2 WHERE transaction_id = $1 RETURNING `+transactionColumns+`;`,
		transactionID, description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, fmt.Errorf("failed to update description of transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

func (r *PgxLedgerRepository) FindByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := scanTransaction(r.Pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = $1;`, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

// FindByAccount pages through an account's transactions with a keyset cursor on
// (timestamp, transaction_id).
func (r *PgxLedgerRepository) FindByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE (from_account = $1 OR to_account = $1)`
	args := []any{accountID}

	if nextToken != nil && *nextToken != "" {
		cursorTS, cursorID, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
		query += ` AND (timestamp, transaction_id) < ($2, $3)`
		args = append(args, cursorTS, cursorID)
	}
	query += ` ORDER BY timestamp DESC, transaction_id DESC LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	txns, err := collectTransactions(rows)
	if err != nil {
		return nil, nil, err
	}

	var next *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[limit-1]
		token := pagination.EncodeCursor(last.Timestamp, last.TransactionID)
		next = &token
	}
	return txns, next, nil
}

func (r *PgxLedgerRepository) FindTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	where, args := filterClause(filter)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where +
		` ORDER BY timestamp DESC, transaction_id DESC;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	return collectTransactions(rows)
}

// filterClause renders filter as a WHERE clause with positional arguments.
func filterClause(filter domain.TransactionFilter) (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.AccountID != "" {
		if filter.OutgoingOnly {
			conds = append(conds, "from_account = "+arg(filter.AccountID))
		} else {
			p := arg(filter.AccountID)
			conds = append(conds, "(from_account = "+p+" OR to_account = "+p+")")
		}
	}
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		conds = append(conds, "type = ANY("+arg(types)+")")
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		conds = append(conds, "status = ANY("+arg(statuses)+")")
	}
	if !filter.From.IsZero() {
		conds = append(conds, "timestamp >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		conds = append(conds, "timestamp < "+arg(filter.To))
	}
	if filter.DescriptionContains != "" {
		conds = append(conds, `description ILIKE '%' || `+arg(escapeLike(filter.DescriptionContains))+` || '%'`)
	}
	if filter.FraudOnly {
		conds = append(conds, "(fraud_flag OR security_level = '"+string(domain.SecurityHigh)+"')")
	}
	if filter.AutomationRuleID != "" {
		conds = append(conds, "automation_rule_id = "+arg(filter.AutomationRuleID))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
