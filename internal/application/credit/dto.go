package credit

import (
	"time"

	"github.com/crediario/backend/internal/domain/credit"
	"github.com/crediario/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Debt operation DTOs
// =============================================================================

// LineItemRequest is one product and quantity of a sale
type LineItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// SubmitDebtOperationRequest is the crediário sale form
type SubmitDebtOperationRequest struct {
	CustomerName  string            `json:"customer_name" binding:"required,max=200"`
	CustomerPhone string            `json:"customer_phone" binding:"required,max=50"`
	Email         string            `json:"email" binding:"omitempty,email,max=200"`
	Address       string            `json:"address" binding:"max=500"`
	Items         []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	Installments  int               `json:"installments" binding:"required,min=1,max=24"`
	Frequency     string            `json:"frequency" binding:"required"`
	FirstDueDate  string            `json:"first_due_date" binding:"required"`
	Description   string            `json:"description" binding:"max=500"`
	// IdempotencyKey comes from the Idempotency-Key header
	IdempotencyKey string `json:"-"`
}

// OperationWarning reports a step that failed after the debt was committed
type OperationWarning struct {
	Kind        string     `json:"kind"`
	Message     string     `json:"message"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	ProductName string     `json:"product_name,omitempty"`
}

// Warning kinds
const (
	WarningKindStockDecrement = "stock_decrement"
	WarningKindCashFlow       = "cash_flow"
	WarningKindRefresh        = "refresh"
)

// StockLevelResponse is a product's stock after the operation
type StockLevelResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Stock       int       `json:"stock"`
}

// DebtOperationResult is the outcome of a submitted sale. Notice and
// Warnings are set when the sale was recorded but a later step failed.
type DebtOperationResult struct {
	OperationID     uuid.UUID            `json:"operation_id"`
	Account         *AccountResponse     `json:"account"`
	Transaction     *TransactionResponse `json:"transaction"`
	Plan            *PlanResponse        `json:"plan"`
	CustomerCreated bool                 `json:"customer_created"`
	AccountCreated  bool                 `json:"account_created"`
	StockLevels     []StockLevelResponse `json:"stock_levels"`
	Notice          string               `json:"notice,omitempty"`
	Warnings        []OperationWarning   `json:"warnings"`
}

// Degraded reports whether any post-commit step failed
func (r *DebtOperationResult) Degraded() bool {
	return len(r.Warnings) > 0
}

// =============================================================================
// Form helper DTOs
// =============================================================================

// StageItemRequest checks a new item against the items already in the cart
type StageItemRequest struct {
	StagedItems []LineItemRequest `json:"staged_items" binding:"dive"`
	Item        LineItemRequest   `json:"item" binding:"required"`
}

// LineItemResponse is a priced line item
type LineItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// StockErrorResponse describes a line item that cannot be served
type StockErrorResponse struct {
	Line        int       `json:"line"`
	Kind        string    `json:"kind"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Available   int       `json:"available"`
	Requested   int       `json:"requested"`
	Message     string    `json:"message"`
}

// StageItemResponse is the cart after staging. Rejected items are not added.
type StageItemResponse struct {
	Accepted bool                 `json:"accepted"`
	Items    []LineItemResponse   `json:"items"`
	Total    decimal.Decimal      `json:"total"`
	Errors   []StockErrorResponse `json:"errors"`
}

// SchedulePreviewRequest recomputes the installment plan while the form is edited
type SchedulePreviewRequest struct {
	Total        decimal.Decimal `json:"total"`
	Installments int             `json:"installments" binding:"required,min=1,max=24"`
	Frequency    string          `json:"frequency" binding:"required"`
	FirstDueDate string          `json:"first_due_date" binding:"required"`
}

// PlanResponse is an installment plan with dates formatted DD/MM/YYYY
type PlanResponse struct {
	Total            decimal.Decimal `json:"total"`
	Installments     int             `json:"installments"`
	Frequency        string          `json:"frequency"`
	InstallmentValue decimal.Decimal `json:"installment_value"`
	FirstDueDate     string          `json:"first_due_date"`
	FinalDueDate     string          `json:"final_due_date"`
	DueDates         []string        `json:"due_dates"`
	ScheduledTotal   decimal.Decimal `json:"scheduled_total"`
	RoundingDrift    decimal.Decimal `json:"rounding_drift"`
}

// ScheduleOptionsResponse lists the choices offered by the form
type ScheduleOptionsResponse struct {
	Installments []credit.InstallmentOption `json:"installments"`
	Frequencies  []string                   `json:"frequencies"`
}

// CustomerResponse is a directory customer
type CustomerResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Phone   string    `json:"phone"`
	Email   string    `json:"email,omitempty"`
	Address string    `json:"address,omitempty"`
}

// ResolutionResponse is the customer lookup outcome
type ResolutionResponse struct {
	Kind            string            `json:"kind"`
	NormalizedPhone string            `json:"normalized_phone"`
	Customer        *CustomerResponse `json:"customer,omitempty"`
	Account         *AccountResponse  `json:"account,omitempty"`
	Suggestion      *CustomerResponse `json:"suggestion,omitempty"`
}

// =============================================================================
// Ledger DTOs
// =============================================================================

// MovementRequest registers a manual debt or a payment on an account
type MovementRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"max=500"`
	Date        *time.Time      `json:"date"`
}

// AccountResponse is a credit account
type AccountResponse struct {
	ID            uuid.UUID       `json:"id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	TotalDebt     decimal.Decimal `json:"total_debt"`
	Status        string          `json:"status"`
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AccountListFilter is the query of the account list
type AccountListFilter struct {
	Search   string `form:"search"`
	HasDebt  *bool  `form:"has_debt"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=customer_name total_debt created_at updated_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TransactionListFilter is the query of an account's history
type TransactionListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// TransactionResponse is a ledger entry
type TransactionResponse struct {
	ID              uuid.UUID          `json:"id"`
	CreditAccountID uuid.UUID          `json:"credit_account_id"`
	Type            string             `json:"type"`
	Amount          decimal.Decimal    `json:"amount"`
	BalanceBefore   decimal.Decimal    `json:"balance_before"`
	BalanceAfter    decimal.Decimal    `json:"balance_after"`
	Description     string             `json:"description"`
	Date            time.Time          `json:"date"`
	Schedule        *ScheduleResponse  `json:"schedule,omitempty"`
	Items           []LineItemResponse `json:"items,omitempty"`
	OperationID     *uuid.UUID         `json:"operation_id,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// ScheduleResponse is the installment metadata stored on a debt
type ScheduleResponse struct {
	Installments     int             `json:"installments"`
	InstallmentValue decimal.Decimal `json:"installment_value"`
	Frequency        string          `json:"frequency"`
	FirstPaymentDate string          `json:"first_payment_date"`
	FinalDueDate     string          `json:"final_due_date"`
}

// MovementResponse is the result of a debt or payment
type MovementResponse struct {
	Account     AccountResponse     `json:"account"`
	Transaction TransactionResponse `json:"transaction"`
}

// SummaryResponse is the store's credit exposure
type SummaryResponse struct {
	AccountCount     int64           `json:"account_count"`
	WithDebtCount    int64           `json:"with_debt_count"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
}

// =============================================================================
// Converters
// =============================================================================

// ToAccountResponse converts a domain CreditAccount to AccountResponse
func ToAccountResponse(a *credit.CreditAccount) AccountResponse {
	return AccountResponse{
		ID:            a.ID,
		TenantID:      a.TenantID,
		CustomerID:    a.CustomerID,
		CustomerName:  a.CustomerName,
		CustomerPhone: a.CustomerPhone,
		TotalDebt:     a.TotalDebt,
		Status:        string(a.Status()),
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// ToAccountResponses converts a slice of accounts
func ToAccountResponses(accounts []credit.CreditAccount) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}

// ToTransactionResponse converts a domain CreditTransaction to TransactionResponse
func ToTransactionResponse(t *credit.CreditTransaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              t.ID,
		CreditAccountID: t.CreditAccountID,
		Type:            string(t.Type),
		Amount:          t.Amount,
		BalanceBefore:   t.BalanceBefore,
		BalanceAfter:    t.BalanceAfter,
		Description:     t.Description,
		Date:            t.Date,
		Items:           ToLineItemResponses(t.Items),
		OperationID:     t.OperationID,
		CreatedAt:       t.CreatedAt,
	}
	if t.Schedule != nil {
		resp.Schedule = &ScheduleResponse{
			Installments:     t.Schedule.Installments,
			InstallmentValue: t.Schedule.InstallmentValue,
			Frequency:        string(t.Schedule.Frequency),
			FirstPaymentDate: credit.FormatDueDate(t.Schedule.FirstPaymentDate),
			FinalDueDate:     credit.FormatDueDate(t.Schedule.FinalDueDate),
		}
	}
	return resp
}

// ToTransactionResponses converts a slice of transactions
func ToTransactionResponses(txs []credit.CreditTransaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txs))
	for i := range txs {
		responses[i] = ToTransactionResponse(&txs[i])
	}
	return responses
}

// ToLineItemResponses converts line items; nil stays nil
func ToLineItemResponses(items []credit.LineItem) []LineItemResponse {
	if items == nil {
		return nil
	}
	responses := make([]LineItemResponse, len(items))
	for i, it := range items {
		responses[i] = LineItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			LineTotal:   it.LineTotal,
		}
	}
	return responses
}

// ToPlanResponse converts an installment plan
func ToPlanResponse(p *credit.InstallmentPlan) *PlanResponse {
	if p == nil {
		return nil
	}
	dates := make([]string, len(p.DueDates))
	for i, d := range p.DueDates {
		dates[i] = credit.FormatDueDate(d)
	}
	return &PlanResponse{
		Total:            p.Total,
		Installments:     p.Count,
		Frequency:        string(p.Frequency),
		InstallmentValue: p.InstallmentValue,
		FirstDueDate:     credit.FormatDueDate(p.FirstDueDate),
		FinalDueDate:     credit.FormatDueDate(p.FinalDueDate),
		DueDates:         dates,
		ScheduledTotal:   p.ScheduledTotal(),
		RoundingDrift:    p.RoundingDrift(),
	}
}

// ToStockErrorResponses converts validator errors
func ToStockErrorResponses(errs credit.StockErrors) []StockErrorResponse {
	responses := make([]StockErrorResponse, len(errs))
	for i, e := range errs {
		responses[i] = StockErrorResponse{
			Line:        e.Line,
			Kind:        string(e.Kind),
			ProductID:   e.ProductID,
			ProductName: e.ProductName,
			Available:   e.Available,
			Requested:   e.Requested,
			Message:     e.Error(),
		}
	}
	return responses
}

// ToCustomerResponse converts a directory customer; nil stays nil
func ToCustomerResponse(c *partner.Customer) *CustomerResponse {
	if c == nil {
		return nil
	}
	return &CustomerResponse{
		ID:      c.ID,
		Name:    c.Name,
		Phone:   c.Phone,
		Email:   c.Email,
		Address: c.Address,
	}
}

// ToResolutionResponse converts a resolver outcome
func ToResolutionResponse(r *credit.Resolution) *ResolutionResponse {
	resp := &ResolutionResponse{
		Kind:            string(r.Kind),
		NormalizedPhone: r.NormalizedPhone,
		Customer:        ToCustomerResponse(r.Customer),
		Suggestion:      ToCustomerResponse(r.Suggestion),
	}
	if r.Account != nil {
		account := ToAccountResponse(r.Account)
		resp.Account = &account
	}
	return resp
}
