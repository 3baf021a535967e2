package pgsql

import (
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
)

// NewRepositoryProvider builds the stores on dbPool, normally a *pgxpool.Pool.
func NewRepositoryProvider(dbPool DBPool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountStore: newPgxAccountRepository(dbPool),
		Ledger:       newPgxLedgerRepository(dbPool),
		RuleStore:    newPgxRuleRepository(dbPool),
	}
}
