package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager is implemented by stores that group several statements
// into one database transaction.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)

	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback must be safe to defer after a successful Commit.
	Rollback(ctx context.Context, tx pgx.Tx) error
}
