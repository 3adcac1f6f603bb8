package credit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crediario/backend/internal/domain/catalog"
	"github.com/crediario/backend/internal/domain/credit"
	"github.com/crediario/backend/internal/domain/finance"
	"github.com/crediario/backend/internal/domain/partner"
	"github.com/crediario/backend/internal/domain/shared"
	"github.com/crediario/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Debt operation steps, in execution order
const (
	StepValidateForm    = "validate_form"
	StepResolveCustomer = "resolve_customer"
	StepCreateCustomer  = "create_customer"
	StepValidateStock   = "validate_stock"
	StepCreateAccount   = "create_account"
	StepPostDebt        = "post_debt"
	StepDecrementStock  = "decrement_stock"
	StepPostCashFlow    = "post_cash_flow"
	StepRefresh         = "refresh"
)

// OperationConfig holds the debt operation settings
type OperationConfig struct {
	CashFlowCategory string
	PaymentMethod    string
	IdempotencyTTL   time.Duration
}

// DefaultOperationConfig returns the standard crediário settings
func DefaultOperationConfig() OperationConfig {
	return OperationConfig{
		CashFlowCategory: "Crediário",
		PaymentMethod:    "crediario",
		IdempotencyTTL:   24 * time.Hour,
	}
}

// DebtOperationService runs a crediário sale end to end: it resolves the
// customer, opens the account, books the debt, then decrements stock and
// posts the cash-flow income. The stores are independent; steps after the
// debt is booked report failures as warnings and are never rolled back.
type DebtOperationService struct {
	ledger       *LedgerService
	resolver     *credit.CustomerResolver
	customers    partner.CustomerRepository
	products     catalog.ProductRepository
	accounts     credit.AccountRepository
	transactions credit.TransactionRepository
	cashFlow     finance.CashFlowRepository
	idempotency  shared.IdempotencyStore
	metrics      Metrics
	config       OperationConfig
	logger       *zap.Logger
}

// DebtOperationOption configures a DebtOperationService
type DebtOperationOption func(*DebtOperationService)

// WithIdempotencyStore enables Idempotency-Key de-duplication
func WithIdempotencyStore(store shared.IdempotencyStore) DebtOperationOption {
	return func(s *DebtOperationService) {
		s.idempotency = store
	}
}

// WithOperationMetrics sets the metrics recorder
func WithOperationMetrics(m Metrics) DebtOperationOption {
	return func(s *DebtOperationService) {
		s.metrics = metricsOrNop(m)
	}
}

// WithOperationConfig overrides the default settings
func WithOperationConfig(cfg OperationConfig) DebtOperationOption {
	return func(s *DebtOperationService) {
		if cfg.CashFlowCategory != "" {
			s.config.CashFlowCategory = cfg.CashFlowCategory
		}
		if cfg.PaymentMethod != "" {
			s.config.PaymentMethod = cfg.PaymentMethod
		}
		if cfg.IdempotencyTTL > 0 {
			s.config.IdempotencyTTL = cfg.IdempotencyTTL
		}
	}
}

// NewDebtOperationService creates a new DebtOperationService
func NewDebtOperationService(
	ledger *LedgerService,
	resolver *credit.CustomerResolver,
	customers partner.CustomerRepository,
	products catalog.ProductRepository,
	accounts credit.AccountRepository,
	transactions credit.TransactionRepository,
	cashFlow finance.CashFlowRepository,
	logger *zap.Logger,
	opts ...DebtOperationOption,
) *DebtOperationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &DebtOperationService{
		ledger:       ledger,
		resolver:     resolver,
		customers:    customers,
		products:     products,
		accounts:     accounts,
		transactions: transactions,
		cashFlow:     cashFlow,
		metrics:      nopMetrics{},
		config:       DefaultOperationConfig(),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// operation carries the state shared by the steps of one submission
type operation struct {
	id       uuid.UUID
	tenantID uuid.UUID
	req      SubmitDebtOperationRequest
	log      *zap.Logger

	candidate  *partner.Customer
	items      []credit.LineItem
	plan       *credit.InstallmentPlan
	resolution *credit.Resolution

	customer    *partner.Customer
	account     *credit.CreditAccount
	transaction *credit.CreditTransaction

	result *DebtOperationResult
}

// Submit runs the nine steps of a debt operation in order. An error means
// no debt was booked, although a new customer or account may remain. Once
// the debt is booked the result is returned with any later failure listed
// in Warnings.
func (s *DebtOperationService) Submit(ctx context.Context, tenantID uuid.UUID, req SubmitDebtOperationRequest) (*DebtOperationResult, error) {
	op := &operation{
		id:       uuid.New(),
		tenantID: tenantID,
		req:      req,
		result:   &DebtOperationResult{Warnings: []OperationWarning{}},
	}
	op.result.OperationID = op.id
	op.log = s.logger.With(
		zap.String("operation_id", op.id.String()),
		zap.String("tenant_id", tenantID.String()),
	)

	ctx, span := telemetry.StartServiceSpan(ctx, "debt_operation", "submit")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOperationID, op.id.String(),
		telemetry.SpanAttrTenantID, tenantID.String(),
		"items_count", len(req.Items),
		"installments", req.Installments,
	)

	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" && s.idempotency != nil {
		if err := s.claim(ctx, tenantID, key); err != nil {
			telemetry.RecordError(span, err)
			s.metrics.RecordOperation(ctx, tenantID, outcomeOf(err))
			return nil, err
		}
	}

	if err := s.book(ctx, op); err != nil {
		telemetry.RecordError(span, err)
		if key != "" && s.idempotency != nil {
			s.release(ctx, op, key)
		}
		s.metrics.RecordOperation(ctx, tenantID, outcomeOf(err))
		return nil, err
	}

	s.decrementStock(ctx, op)
	s.postCashFlow(ctx, op)
	s.refresh(ctx, op)

	outcome := OutcomeSuccess
	if op.result.Degraded() {
		outcome = OutcomeDegraded
		for _, w := range op.result.Warnings {
			s.metrics.RecordWarning(ctx, tenantID, w.Kind)
		}
	}
	s.metrics.RecordOperation(ctx, tenantID, outcome)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAccountID, op.account.ID.String(),
		telemetry.SpanAttrCustomerID, op.customer.ID.String(),
		"outcome", outcome,
		"warnings_count", len(op.result.Warnings),
	)

	op.log.Info("debt operation completed",
		zap.String("account_id", op.account.ID.String()),
		zap.String("transaction_id", op.transaction.ID.String()),
		zap.String("amount", op.transaction.Amount.String()),
		zap.Bool("customer_created", op.result.CustomerCreated),
		zap.Int("warnings", len(op.result.Warnings)),
	)

	return op.result, nil
}

// book runs steps 1 to 6. Any error aborts the operation.
func (s *DebtOperationService) book(ctx context.Context, op *operation) error {
	if err := s.step(ctx, op, StepValidateForm, s.validateForm); err != nil {
		return err
	}
	if err := s.step(ctx, op, StepResolveCustomer, s.resolveCustomer); err != nil {
		return err
	}
	if err := s.step(ctx, op, StepCreateCustomer, s.createCustomer); err != nil {
		return err
	}
	if err := s.step(ctx, op, StepValidateStock, s.validateStock); err != nil {
		return err
	}
	if err := s.step(ctx, op, StepCreateAccount, s.createAccount); err != nil {
		return err
	}
	return s.step(ctx, op, StepPostDebt, s.postDebt)
}

func (s *DebtOperationService) step(ctx context.Context, op *operation, name string, fn func(context.Context, *operation) error) error {
	ctx, span := telemetry.StartSpan(ctx, "debt_operation."+name)
	defer span.End()

	if err := fn(ctx, op); err != nil {
		telemetry.RecordError(span, err)
		op.log.Warn("debt operation aborted",
			zap.String("step", name),
			zap.Error(err),
		)
		return err
	}

	op.log.Debug("debt operation step completed", zap.String("step", name))
	return nil
}

// validateForm checks the form and prices the items. It reads the catalog
// but writes nothing.
func (s *DebtOperationService) validateForm(ctx context.Context, op *operation) error {
	req := op.req
	if strings.TrimSpace(req.CustomerName) == "" {
		return validationError("Customer name is required", map[string]any{"field": "customer_name"})
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		return validationError("Customer phone is required", map[string]any{"field": "customer_phone"})
	}

	candidate, err := partner.NewCustomer(op.tenantID, req.CustomerName, req.CustomerPhone)
	if err != nil {
		return asValidationError(err)
	}
	if err := candidate.SetContact(req.Email, req.Address); err != nil {
		return asValidationError(err)
	}
	op.candidate = candidate

	if len(req.Items) == 0 {
		return validationError("At least one item is required", map[string]any{"field": "items"})
	}
	for i, it := range req.Items {
		if it.Quantity <= 0 {
			return validationError("Quantity must be positive", map[string]any{"field": "items", "line": i})
		}
	}

	items, _, err := priceItems(ctx, s.products, op.tenantID, req.Items)
	if err != nil {
		return err
	}
	op.items = items

	total := credit.SumLineItems(items)
	if !total.IsPositive() {
		return validationError("Total must be greater than zero", map[string]any{"field": "items", "total": total.StringFixed(2)})
	}
	plan, err := credit.ComputeScheduleFromInput(total, req.Installments, req.Frequency, req.FirstDueDate)
	if err != nil {
		return err
	}
	op.plan = plan
	op.result.Plan = ToPlanResponse(plan)
	return nil
}

func (s *DebtOperationService) resolveCustomer(ctx context.Context, op *operation) error {
	res, err := s.resolver.Resolve(ctx, op.tenantID, op.req.CustomerName, op.req.CustomerPhone)
	if err != nil {
		return err
	}
	if res.HasCredit() {
		account := ToAccountResponse(res.Account)
		return credit.ErrDuplicateAccount.WithDetails(map[string]any{"account": account})
	}
	op.resolution = res
	return nil
}

func (s *DebtOperationService) createCustomer(ctx context.Context, op *operation) error {
	if op.resolution.Customer != nil {
		op.customer = op.resolution.Customer
		return nil
	}
	if err := s.customers.Create(ctx, op.candidate); err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	op.customer = op.candidate
	op.result.CustomerCreated = true
	return nil
}

// validateStock re-checks every item against a snapshot taken now
func (s *DebtOperationService) validateStock(ctx context.Context, op *operation) error {
	products, err := s.products.FindByIDs(ctx, op.tenantID, productIDs(op.items))
	if err != nil {
		return fmt.Errorf("failed to load stock snapshot: %w", err)
	}
	snapshot := make(credit.StockSnapshot, len(products))
	for _, p := range products {
		snapshot[p.ID] = credit.StockLevel{Name: p.Name, Available: p.Stock}
	}
	if errs := credit.ValidateLineItems(op.items, snapshot); len(errs) > 0 {
		return errs.AsDomainError()
	}
	return nil
}

func (s *DebtOperationService) createAccount(ctx context.Context, op *operation) error {
	account, err := s.ledger.CreateAccount(ctx, op.tenantID, op.customer)
	if err != nil {
		return err
	}
	op.account = account
	op.result.AccountCreated = true
	return nil
}

func (s *DebtOperationService) postDebt(ctx context.Context, op *operation) error {
	opID := op.id
	tx, err := s.ledger.PostDebt(ctx, op.account, DebtEntry{
		Amount:      op.plan.Total,
		Description: op.req.Description,
		Plan:        op.plan,
		Items:       op.items,
		OperationID: &opID,
	})
	if err != nil {
		return err
	}
	op.transaction = tx

	account := ToAccountResponse(op.account)
	txResp := ToTransactionResponse(tx)
	op.result.Account = &account
	op.result.Transaction = &txResp
	return nil
}

// decrementStock issues one decrement per line item. A failure does not
// stop the remaining items and nothing already decremented is restored.
func (s *DebtOperationService) decrementStock(ctx context.Context, op *operation) {
	ctx, span := telemetry.StartSpan(ctx, "debt_operation."+StepDecrementStock)
	defer span.End()

	var failed []OperationWarning
	for _, item := range op.items {
		if err := s.products.DecrementStock(ctx, op.tenantID, item.ProductID, item.Quantity); err != nil {
			productID := item.ProductID
			failed = append(failed, OperationWarning{
				Kind:        WarningKindStockDecrement,
				Message:     fmt.Sprintf("%s: %s", item.ProductName, errorMessage(err)),
				ProductID:   &productID,
				ProductName: item.ProductName,
			})
			telemetry.AddEvent(span, "stock_decrement_failed",
				telemetry.SpanAttrProductID, productID.String(),
				telemetry.SpanAttrQuantity, item.Quantity,
			)
			op.log.Error("stock decrement failed after debt was booked",
				zap.String("step", StepDecrementStock),
				zap.String("product_id", productID.String()),
				zap.String("product_name", item.ProductName),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
		}
	}

	if len(failed) > 0 {
		op.result.Warnings = append(op.result.Warnings, failed...)
		op.addNotice(fmt.Sprintf("venda registrada, mas %d produtos com erro de estoque — verifique manualmente", len(failed)))
		telemetry.SetAttribute(span, "failed_items", len(failed))
	}
}

func (s *DebtOperationService) postCashFlow(ctx context.Context, op *operation) {
	ctx, span := telemetry.StartSpan(ctx, "debt_operation."+StepPostCashFlow)
	defer span.End()

	description := fmt.Sprintf("Venda no crediário - %s", op.account.CustomerName)
	entry, err := finance.NewCashFlowEntry(op.tenantID, finance.EntryTypeIncome, op.transaction.Amount, description, op.transaction.Date)
	if err == nil {
		entry.WithCategory(s.config.CashFlowCategory).
			WithPaymentMethod(s.config.PaymentMethod).
			WithReference(op.transaction.ID)
		err = s.cashFlow.PostEntry(ctx, entry)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		op.result.Warnings = append(op.result.Warnings, OperationWarning{
			Kind:    WarningKindCashFlow,
			Message: "lançamento no fluxo de caixa falhou: " + errorMessage(err),
		})
		op.addNotice("venda registrada, mas o lançamento no fluxo de caixa falhou — verifique manualmente")
		op.log.Error("cash flow entry failed after debt was booked",
			zap.String("step", StepPostCashFlow),
			zap.String("transaction_id", op.transaction.ID.String()),
			zap.Error(err),
		)
	}
}

// refresh re-reads the account, the booked transaction and the stock of the
// sold products so the result reflects the stores, not this request's copy
func (s *DebtOperationService) refresh(ctx context.Context, op *operation) {
	ctx, span := telemetry.StartSpan(ctx, "debt_operation."+StepRefresh)
	defer span.End()

	var errs []error
	if account, err := s.accounts.FindByID(ctx, op.tenantID, op.account.ID); err != nil {
		errs = append(errs, fmt.Errorf("account: %w", err))
	} else {
		resp := ToAccountResponse(account)
		op.result.Account = &resp
	}

	if tx, err := s.transactions.FindByID(ctx, op.tenantID, op.transaction.ID); err != nil {
		errs = append(errs, fmt.Errorf("transaction: %w", err))
	} else {
		resp := ToTransactionResponse(tx)
		op.result.Transaction = &resp
	}

	products, err := s.products.FindByIDs(ctx, op.tenantID, productIDs(op.items))
	if err != nil {
		errs = append(errs, fmt.Errorf("stock: %w", err))
	}
	op.result.StockLevels = make([]StockLevelResponse, 0, len(products))
	for _, p := range products {
		op.result.StockLevels = append(op.result.StockLevels, StockLevelResponse{
			ProductID:   p.ID,
			ProductName: p.Name,
			Stock:       p.Stock,
		})
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		telemetry.RecordError(span, err)
		op.result.Warnings = append(op.result.Warnings, OperationWarning{
			Kind:    WarningKindRefresh,
			Message: "não foi possível atualizar os dados exibidos: " + err.Error(),
		})
		op.log.Warn("refresh after debt operation failed",
			zap.String("step", StepRefresh),
			zap.Error(err),
		)
	}
}

func (s *DebtOperationService) claim(ctx context.Context, tenantID uuid.UUID, key string) error {
	claimed, err := s.idempotency.MarkProcessed(ctx, idempotencyKey(tenantID, key), s.config.IdempotencyTTL)
	if err != nil {
		return fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if !claimed {
		return shared.ErrAlreadyProcessed.WithDetails(map[string]any{"idempotency_key": key})
	}
	return nil
}

// release frees the key of an operation that booked no debt so the same
// submission can be retried
func (s *DebtOperationService) release(ctx context.Context, op *operation, key string) {
	if err := s.idempotency.Release(ctx, idempotencyKey(op.tenantID, key)); err != nil {
		op.log.Warn("failed to release idempotency key",
			zap.String("idempotency_key", key),
			zap.Error(err),
		)
	}
}

func (op *operation) addNotice(notice string) {
	if op.result.Notice == "" {
		op.result.Notice = notice
		return
	}
	op.result.Notice += "; " + notice
}

func idempotencyKey(tenantID uuid.UUID, key string) string {
	return fmt.Sprintf("credit:debt-operation:%s:%s", tenantID, key)
}

func productIDs(items []credit.LineItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}

// outcomeOf classifies an aborted operation for metrics
func outcomeOf(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return OutcomeRejected
	}
	return OutcomeFailed
}

var customerFieldByCode = map[string]string{
	"INVALID_NAME":    "customer_name",
	"INVALID_PHONE":   "customer_phone",
	"INVALID_EMAIL":   "email",
	"INVALID_ADDRESS": "address",
}

// asValidationError re-codes a customer validation error as VALIDATION_ERROR
func asValidationError(err error) error {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return err
	}
	details := map[string]any{"reason": domainErr.Code}
	if field, ok := customerFieldByCode[domainErr.Code]; ok {
		details["field"] = field
	}
	return validationError(domainErr.Message, details)
}

func errorMessage(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}
