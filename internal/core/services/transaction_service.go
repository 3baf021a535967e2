package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Cheker-dimassi/banking-system-microservices/internal/apperrors"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/core/domain"
	portsrepo "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/repositories"
	portssvc "github.com/Cheker-dimassi/banking-system-microservices/internal/core/ports/services"
	"github.com/Cheker-dimassi/banking-system-microservices/internal/platform/config"
	"github.com/shopspring/decimal"
)

// transactionService composes the guard chain, the saga, the reversal engine
// and the automation engine behind the transaction API.
type transactionService struct {
	BaseService
	defaultCurrency string

	accounts   portsrepo.AccountStore
	ledger     portsrepo.Ledger
	categories portsrepo.CategoryResolver
	events     portsrepo.EventPublisher

	saga     *SagaOrchestrator
	reversal *ReversalEngine
	engine   *RuleEngine
	limits   *LimitChecker
	fees     *FeeCalculator
	fraud    *FraudScorer
	guards   []Guard
}

// transactionDeps are the optional collaborators of the transaction service.
type transactionDeps struct {
	categories portsrepo.CategoryResolver
	events     portsrepo.EventPublisher
	now        domain.Clock
}

// TransactionServiceOption is a functional option for configuring the transaction service
type TransactionServiceOption func(*transactionDeps)

// WithCategoryResolver enables category enrichment of incoming transactions
func WithCategoryResolver(resolver portsrepo.CategoryResolver) TransactionServiceOption {
	return func(d *transactionDeps) {
		d.categories = resolver
	}
}

// WithEventPublisher enables transaction lifecycle events
func WithEventPublisher(publisher portsrepo.EventPublisher) TransactionServiceOption {
	return func(d *transactionDeps) {
		d.events = publisher
	}
}

// WithClock replaces time.Now for limit windows, fraud scoring and rule totals
func WithClock(now domain.Clock) TransactionServiceOption {
	return func(d *transactionDeps) {
		d.now = now
	}
}

// NewTransactionService wires the transaction pipeline from cfg and the given stores.
func NewTransactionService(cfg *config.Config, repos portsrepo.RepositoryProvider, options ...TransactionServiceOption) portssvc.TransactionSvcFacade {
	deps := &transactionDeps{now: time.Now}
	for _, option := range options {
		option(deps)
	}

	loc := cfg.Location
	accounts := newTimedAccountStore(repos.AccountStore, cfg.StoreCallTimeout)
	ledger := newTimedLedger(repos.Ledger, cfg.StoreCallTimeout)
	saga := NewSagaOrchestrator(accounts, ledger, cfg.StoreCallTimeout, deps.now)
	svc := &transactionService{
		BaseService:     newBaseService(deps.now, loc),
		defaultCurrency: cfg.DefaultCurrency,
		accounts:        accounts,
		ledger:          ledger,
		categories:      deps.categories,
		events:          deps.events,
		saga:            saga,
		reversal:        NewReversalEngine(ledger, saga, deps.now),
		engine:          NewRuleEngine(repos.RuleStore, ledger, saga, cfg.AutomationMaxDepth, deps.now, loc),
		limits:          NewLimitChecker(cfg.Limits, ledger, deps.now, loc),
		fees:            NewFeeCalculator(cfg.Fees),
		fraud:           NewFraudScorer(cfg.Fraud, ledger, deps.now, loc),
	}
	svc.guards = []Guard{
		accountStatusGuard(accounts),
		limitsGuard(svc.limits),
		feesGuard(svc.fees),
		fraudGuard(svc.fraud),
	}
	return svc
}

// Ensure transactionService implements the TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

func (s *transactionService) Process(ctx context.Context, txn domain.Transaction) (*domain.ProcessResult, error) {
	logger := s.GetLogger(ctx)

	// Identity, status and automation lineage are assigned here, never by the caller.
	txn.TransactionID = ""
	txn.Status = ""
	txn.Depth = 0
	txn.AutomationRuleID = nil
	txn.TriggeredBy = nil
	txn.Reference = nil
	txn.Currency = strings.ToUpper(strings.TrimSpace(txn.Currency))
	if txn.Currency == "" {
		txn.Currency = s.defaultCurrency
	}

	if err := txn.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := s.enrichCategory(ctx, &txn); err != nil {
		return nil, err
	}

	unlock := s.saga.locker.Lock(txn.AccountIDs()...)
	gc := &GuardContext{Transaction: &txn}
	if err := runGuards(ctx, gc, s.guards...); err != nil {
		unlock()
		logger.Warn("Transaction rejected by guard",
			slog.String("type", string(txn.Type)),
			slog.String("from_account", txn.FromAccount),
			slog.String("to_account", txn.ToAccount),
			slog.String("error", err.Error()))
		return nil, err
	}
	sagaResult, err := s.saga.executeLocked(ctx, txn)
	unlock()

	if err != nil {
		if sagaResult == nil {
			return nil, err
		}
		if sagaResult.Transaction != nil && sagaResult.Transaction.Status == domain.StatusFailed {
			s.publish(ctx, domain.EventTransactionFailed, sagaResult.Transaction)
		}
		return &domain.ProcessResult{
			Success:     false,
			Transaction: sagaResult.Transaction,
			Steps:       sagaResult.Steps,
		}, err
	}

	s.publish(ctx, domain.EventTransactionCompleted, sagaResult.Transaction)
	automation := s.engine.RunRules(ctx, *sagaResult.Transaction)
	for _, r := range automation {
		if r.Executed && r.Transaction != nil {
			s.publish(ctx, domain.EventTransactionCompleted, r.Transaction)
		}
	}

	return &domain.ProcessResult{
		Success:     true,
		Transaction: sagaResult.Transaction,
		Steps:       sagaResult.Steps,
		Automation:  automation,
	}, nil
}

func (s *transactionService) Reverse(ctx context.Context, transactionID string) (*domain.ReversalResult, error) {
	result, err := s.reversal.Reverse(ctx, transactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to reverse transaction", slog.String("transaction_id", transactionID))
		return result, err
	}

	s.publish(ctx, domain.EventTransactionReversed, result.OriginalTransaction)
	result.Automation = s.engine.RunRules(ctx, *result.ReversalTransaction)
	return result, nil
}

func (s *transactionService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.ledger.FindByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get transaction", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) ListByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	txns, next, err := s.ledger.FindByAccount(ctx, accountID, limit, nextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions", slog.String("account_id", accountID))
		return nil, nil, err
	}
	return txns, next, nil
}

func (s *transactionService) ListSuspicious(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	txns, err := s.ledger.FindTransactions(ctx, domain.TransactionFilter{AccountID: accountID, FraudOnly: true})
	if err != nil {
		s.LogError(ctx, err, "Failed to list suspicious transactions", slog.String("account_id", accountID))
		return nil, err
	}
	return txns, nil
}

func (s *transactionService) AssessFraud(ctx context.Context, txn domain.Transaction) (*domain.FraudAssessment, error) {
	if !txn.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown transaction type '%s'", apperrors.ErrValidation, txn.Type)
	}
	if !txn.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", apperrors.ErrValidation)
	}
	return s.fraud.Assess(ctx, txn)
}

func (s *transactionService) CalculateFees(txType domain.TransactionType, amount decimal.Decimal) domain.FeeBreakdown {
	return s.fees.Calculate(txType, amount)
}

// GetCommissions totals the commission of completed transactions in period:
// "all", "daily", "monthly" or a calendar month as "YYYY-MM".
func (s *transactionService) GetCommissions(ctx context.Context, period string) (*domain.CommissionReport, error) {
	filter := domain.TransactionFilter{Statuses: []domain.TransactionStatus{domain.StatusCompleted}}
	now := s.Now()
	switch period {
	case "all":
	case "daily":
		filter.From = domain.StartOfDay(now, s.loc)
	case "monthly":
		filter.From = domain.StartOfMonth(now, s.loc)
	default:
		month, err := time.ParseInLocation("2006-01", period, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: period must be all, daily, monthly or YYYY-MM, got '%s'", apperrors.ErrValidation, period)
		}
		filter.From = month
		filter.To = month.AddDate(0, 1, 0)
	}

	txns, err := s.ledger.FindTransactions(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to load commissions", slog.String("period", period))
		return nil, err
	}

	report := &domain.CommissionReport{Period: period, TotalCommission: decimal.Zero, Transactions: []domain.Transaction{}}
	for _, t := range txns {
		if !t.Commission.IsPositive() {
			continue
		}
		report.TotalCommission = report.TotalCommission.Add(t.Commission)
		report.Transactions = append(report.Transactions, t)
	}
	report.TransactionCount = len(report.Transactions)
	return report, nil
}

func (s *transactionService) GetLimits(ctx context.Context, accountID string) (*domain.AccountLimits, error) {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.limits.Overview(ctx, account)
}

func (s *transactionService) UpdateLimits(ctx context.Context, accountID string, limits domain.CustomLimits) (*domain.AccountLimits, error) {
	for name, v := range map[string]*decimal.Decimal{
		"dailyWithdrawal":   limits.DailyWithdrawal,
		"dailyTransfer":     limits.DailyTransfer,
		"singleTransaction": limits.SingleTransaction,
	} {
		if v != nil && !v.IsPositive() {
			return nil, fmt.Errorf("%w: %s must be greater than zero", apperrors.ErrValidation, name)
		}
	}

	account, err := s.accounts.UpdateCustomLimits(ctx, accountID, limits)
	if err != nil {
		s.LogError(ctx, err, "Failed to update custom limits", slog.String("account_id", accountID))
		return nil, err
	}
	s.GetLogger(ctx).Info("Custom limits updated", slog.String("account_id", accountID))
	return s.limits.Overview(ctx, account)
}

// maxDescriptionLength bounds descriptions in characters.
const maxDescriptionLength = 255

func (s *transactionService) UpdateDescription(ctx context.Context, transactionID, description string) (*domain.Transaction, error) {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return nil, fmt.Errorf("%w: description cannot exceed %d characters", apperrors.ErrValidation, maxDescriptionLength)
	}

	txn, err := s.ledger.UpdateDescription(ctx, transactionID, description)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to update transaction description", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	s.GetLogger(ctx).Info("Transaction description updated", slog.String("transaction_id", transactionID))
	return txn, nil
}

func (s *transactionService) GetFeeWaiver(ctx context.Context, accountID string) (*domain.FeeWaiver, error) {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return feeWaiverOf(account), nil
}

func (s *transactionService) WaiveFees(ctx context.Context, accountID string, types []domain.TransactionType) (*domain.FeeWaiver, error) {
	if len(types) == 0 {
		types = domain.DefaultFeeWaivers
	}
	for _, t := range types {
		if !t.IsValid() {
			return nil, fmt.Errorf("%w: unknown transaction type '%s'", apperrors.ErrValidation, t)
		}
		if !t.IsFeeBearing() {
			return nil, fmt.Errorf("%w: %s carries no fee to waive", apperrors.ErrValidation, t)
		}
	}

	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	waivers := slices.Clone(account.FeeWaivers)
	for _, t := range types {
		if !slices.Contains(waivers, t) {
			waivers = append(waivers, t)
		}
	}
	return s.setFeeWaivers(ctx, accountID, waivers)
}

func (s *transactionService) RemoveFeeWaivers(ctx context.Context, accountID string) (*domain.FeeWaiver, error) {
	return s.setFeeWaivers(ctx, accountID, nil)
}

func (s *transactionService) setFeeWaivers(ctx context.Context, accountID string, types []domain.TransactionType) (*domain.FeeWaiver, error) {
	account, err := s.accounts.SetFeeWaivers(ctx, accountID, types)
	if err != nil {
		if !errors.Is(err, apperrors.ErrAccountNotFound) {
			s.LogError(ctx, err, "Failed to update fee waivers", slog.String("account_id", accountID))
		}
		return nil, err
	}
	s.GetLogger(ctx).Info("Fee waivers updated",
		slog.String("account_id", accountID),
		slog.Any("waived_fees", account.FeeWaivers))
	return feeWaiverOf(account), nil
}

func feeWaiverOf(account *domain.Account) *domain.FeeWaiver {
	waived := account.FeeWaivers
	if waived == nil {
		waived = []domain.TransactionType{}
	}
	return &domain.FeeWaiver{AccountID: account.AccountID, WaivedFees: waived}
}

// enrichCategory attaches the category name when a category id was supplied.
func (s *transactionService) enrichCategory(ctx context.Context, txn *domain.Transaction) error {
	if txn.CategoryID == nil || strings.TrimSpace(*txn.CategoryID) == "" {
		txn.CategoryID = nil
		txn.CategoryName = nil
		return nil
	}
	if s.categories == nil {
		return nil
	}

	category, err := s.categories.Resolve(ctx, *txn.CategoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: category '%s' does not exist", apperrors.ErrValidation, *txn.CategoryID)
		}
		s.LogError(ctx, err, "Category service lookup failed", slog.String("category_id", *txn.CategoryID))
		if errors.Is(err, apperrors.ErrUnavailable) {
			return err
		}
		return fmt.Errorf("%w: category lookup failed: %w", apperrors.ErrUnavailable, err)
	}
	txn.CategoryName = &category.Name
	return nil
}

// publish emits an event. Delivery is best effort and never fails the request.
func (s *transactionService) publish(ctx context.Context, eventType string, txn *domain.Transaction) {
	if s.events == nil || txn == nil {
		return
	}
	if err := s.events.Publish(context.WithoutCancel(ctx), eventType, txn); err != nil {
		s.GetLogger(ctx).Warn("Failed to publish transaction event",
			slog.String("event_type", eventType),
			slog.String("transaction_id", txn.TransactionID),
			slog.String("error", err.Error()))
	}
}
