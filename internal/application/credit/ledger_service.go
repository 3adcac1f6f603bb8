package credit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/crediario/backend/internal/domain/credit"
	"github.com/crediario/backend/internal/domain/partner"
	"github.com/crediario/backend/internal/domain/shared"
	"github.com/crediario/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService owns credit account balances and their transaction log
type LedgerService struct {
	accounts     credit.AccountRepository
	transactions credit.TransactionRepository
	events       shared.EventPublisher
	txManager    shared.TransactionManager
	metrics      Metrics
	logger       *zap.Logger
}

// LedgerOption configures a LedgerService
type LedgerOption func(*LedgerService)

// WithTransactionManager makes the balance update and its transaction row
// a single unit of work
func WithTransactionManager(tm shared.TransactionManager) LedgerOption {
	return func(s *LedgerService) {
		if tm != nil {
			s.txManager = tm
		}
	}
}

// NewLedgerService creates a new LedgerService. events and metrics may be nil.
func NewLedgerService(
	accounts credit.AccountRepository,
	transactions credit.TransactionRepository,
	events shared.EventPublisher,
	metrics Metrics,
	logger *zap.Logger,
	opts ...LedgerOption,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &LedgerService{
		accounts:     accounts,
		transactions: transactions,
		events:       events,
		txManager:    directTransaction{},
		metrics:      metricsOrNop(metrics),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// directTransaction runs fn without a unit of work
type directTransaction struct{}

func (directTransaction) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// DebtEntry describes a debt to post on an account
type DebtEntry struct {
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	Plan        *credit.InstallmentPlan
	Items       []credit.LineItem
	OperationID *uuid.UUID
}

// CreateAccount opens a credit account for a directory customer.
// A tenant has at most one active account per canonical phone.
func (s *LedgerService) CreateAccount(ctx context.Context, tenantID uuid.UUID, customer *partner.Customer) (*credit.CreditAccount, error) {
	if customer == nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	if customer.TenantID != tenantID {
		return nil, shared.ErrNotFound.WithDetails(map[string]any{"customer_id": customer.ID.String()})
	}

	phone := partner.NormalizePhone(customer.Phone)
	exists, err := s.accounts.ExistsByPhone(ctx, tenantID, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if exists {
		return nil, credit.ErrDuplicateAccount.WithDetails(map[string]any{"customer_phone": phone})
	}

	account, err := credit.NewCreditAccount(customer)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.publish(ctx, account)

	s.logger.Info("credit account created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("account_id", account.ID.String()),
		zap.String("customer_id", customer.ID.String()),
	)

	return account, nil
}

// PostDebt applies a debt to an account and appends the debt transaction.
// The balance is saved with optimistic locking before the transaction is written.
func (s *LedgerService) PostDebt(ctx context.Context, account *credit.CreditAccount, entry DebtEntry) (*credit.CreditTransaction, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit_ledger", "post_debt")
	defer span.End()
	telemetry.SetAttributes(span,
		"account_id", account.ID.String(),
		telemetry.SpanAttrAmount, entry.Amount.String(),
	)

	before := account.TotalDebt
	if _, err := account.ApplyDebt(entry.Amount); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	tx, err := credit.NewCreditTransaction(account, credit.TransactionTypeDebt, entry.Amount, before, entry.Description)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	tx.WithDate(entry.Date)
	if entry.Plan != nil {
		tx.WithSchedule(entry.Plan)
	}
	if len(entry.Items) > 0 {
		tx.WithItems(entry.Items)
	}
	if entry.OperationID != nil {
		tx.WithOperationID(*entry.OperationID)
	}

	if err := s.persist(ctx, account, tx); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordDebtAmount(ctx, account.TenantID, tx.Amount)
	telemetry.SetAttribute(span, "balance_after", account.TotalDebt.String())

	return tx, nil
}

// PostPayment applies a payment to an account and appends the payment transaction.
// An amount above the outstanding balance settles it; the excess is not kept.
func (s *LedgerService) PostPayment(ctx context.Context, account *credit.CreditAccount, amount decimal.Decimal, description string, date time.Time) (*credit.CreditTransaction, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit_ledger", "post_payment")
	defer span.End()
	telemetry.SetAttributes(span,
		"account_id", account.ID.String(),
		telemetry.SpanAttrAmount, amount.String(),
	)

	before := account.TotalDebt
	if _, err := account.ApplyPayment(amount); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	tx, err := credit.NewCreditTransaction(account, credit.TransactionTypePayment, amount, before, description)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	tx.WithDate(date)

	if err := s.persist(ctx, account, tx); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordPayment(ctx, account.TenantID, tx.Amount)
	telemetry.SetAttribute(span, "balance_after", account.TotalDebt.String())

	return tx, nil
}

// ApplyDebt registers a manual debt on an account
func (s *LedgerService) ApplyDebt(ctx context.Context, tenantID, accountID uuid.UUID, req MovementRequest) (*MovementResponse, error) {
	account, err := s.accounts.FindByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	entry := DebtEntry{Amount: req.Amount, Description: req.Description}
	if req.Date != nil {
		entry.Date = *req.Date
	}
	tx, err := s.PostDebt(ctx, account, entry)
	if err != nil {
		return nil, err
	}

	return &MovementResponse{
		Account:     ToAccountResponse(account),
		Transaction: ToTransactionResponse(tx),
	}, nil
}

// ApplyPayment registers a payment on an account
func (s *LedgerService) ApplyPayment(ctx context.Context, tenantID, accountID uuid.UUID, req MovementRequest) (*MovementResponse, error) {
	account, err := s.accounts.FindByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	tx, err := s.PostPayment(ctx, account, req.Amount, req.Description, date)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment registered",
		zap.String("tenant_id", tenantID.String()),
		zap.String("account_id", account.ID.String()),
		zap.String("amount", tx.Amount.String()),
		zap.String("balance_after", tx.BalanceAfter.String()),
	)

	return &MovementResponse{
		Account:     ToAccountResponse(account),
		Transaction: ToTransactionResponse(tx),
	}, nil
}

// DeleteAccount moves a zero-balance account to the Deleted state
func (s *LedgerService) DeleteAccount(ctx context.Context, tenantID, accountID uuid.UUID) error {
	account, err := s.accounts.FindByID(ctx, tenantID, accountID)
	if err != nil {
		return err
	}

	if err := account.MarkDeleted(); err != nil {
		return err
	}
	if err := s.accounts.SaveWithLock(ctx, account); err != nil {
		return err
	}

	s.publish(ctx, account)

	s.logger.Info("credit account deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("account_id", account.ID.String()),
	)

	return nil
}

// GetAccount returns an account by ID
func (s *LedgerService) GetAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*AccountResponse, error) {
	account, err := s.accounts.FindByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(account)
	return &resp, nil
}

// ListAccounts returns a page of accounts and the total count
func (s *LedgerService) ListAccounts(ctx context.Context, tenantID uuid.UUID, filter AccountListFilter) ([]AccountResponse, int64, error) {
	f := credit.AccountFilter{
		Filter:  shared.DefaultFilter(),
		HasDebt: filter.HasDebt,
	}
	f.Search = strings.TrimSpace(filter.Search)
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}

	accounts, total, err := s.accounts.List(ctx, tenantID, f)
	if err != nil {
		return nil, 0, err
	}
	return ToAccountResponses(accounts), total, nil
}

// ListTransactions returns an account's history, newest first
func (s *LedgerService) ListTransactions(ctx context.Context, tenantID, accountID uuid.UUID, filter TransactionListFilter) ([]TransactionResponse, int64, error) {
	if _, err := s.accounts.FindByID(ctx, tenantID, accountID); err != nil {
		return nil, 0, err
	}

	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	txs, total, err := s.transactions.ListByAccount(ctx, tenantID, accountID, f)
	if err != nil {
		return nil, 0, err
	}
	return ToTransactionResponses(txs), total, nil
}

// GetSummary returns the tenant's account count and total outstanding debt
func (s *LedgerService) GetSummary(ctx context.Context, tenantID uuid.UUID) (*SummaryResponse, error) {
	summary, err := s.accounts.Summary(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &SummaryResponse{
		AccountCount:     summary.AccountCount,
		WithDebtCount:    summary.WithDebtCount,
		TotalOutstanding: summary.TotalOutstanding,
	}, nil
}

// persist stores the new balance and the transaction behind it together.
// On failure neither is kept.
func (s *LedgerService) persist(ctx context.Context, account *credit.CreditAccount, tx *credit.CreditTransaction) error {
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.accounts.SaveWithLock(ctx, account); err != nil {
			return err
		}
		if err := s.transactions.Create(ctx, tx); err != nil {
			return fmt.Errorf("failed to save credit transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		account.ClearDomainEvents()
		return err
	}
	s.publish(ctx, account)
	return nil
}

// publish hands the account's pending events to the bus. Delivery errors
// are logged; the ledger change is already stored.
func (s *LedgerService) publish(ctx context.Context, account *credit.CreditAccount) {
	events := account.GetDomainEvents()
	account.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish credit events",
			zap.String("account_id", account.ID.String()),
			zap.Int("event_count", len(events)),
			zap.Error(err),
		)
	}
}
