package services

import (
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	portssvc "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/services"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, options ...TransactionServiceOption) *portssvc.ServiceContainer {
	deps := &transactionDeps{}
	for _, option := range options {
		option(deps)
	}

	accounts := newTimedAccountStore(repos.AccountStore, cfg.StoreCallTimeout)
	ledger := newTimedLedger(repos.Ledger, cfg.StoreCallTimeout)

	return &portssvc.ServiceContainer{
		Transaction:  NewTransactionService(cfg, repos, options...),
		Rule:         NewRuleService(repos.RuleStore, accounts, ledger, deps.now, cfg.Location),
		ExchangeRate: NewExchangeRateService(cfg.Exchange, cfg.Fees, deps.now),
		Report:       NewReportService(accounts, ledger, deps.now, cfg.Location),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.TransactionSvcFacade  = (*transactionService)(nil)
	_ portssvc.RuleSvcFacade         = (*ruleService)(nil)
	_ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)
	_ portssvc.ReportSvcFacade       = (*reportService)(nil)
)
