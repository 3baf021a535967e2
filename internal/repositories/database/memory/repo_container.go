package memory

import (
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
)

// NewRepositoryProvider returns empty in-memory stores. Data does not survive a restart.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountStore: NewAccountStore(),
		Ledger:       NewLedger(),
		RuleStore:    NewRuleStore(),
	}
}
