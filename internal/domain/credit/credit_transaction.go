package credit

import (
	"strings"
	"time"

	"github.com/crediario/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the kind of ledger movement
type TransactionType string

const (
	// TransactionTypeDebt increases the account balance
	TransactionTypeDebt TransactionType = "debt"
	// TransactionTypePayment decreases the account balance, never below zero
	TransactionTypePayment TransactionType = "payment"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeDebt || t == TransactionTypePayment
}

// LineItem is one product/quantity/price entry of a debt operation.
// UnitPrice and ProductName are snapshots taken when the item was staged.
type LineItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// NewLineItem builds a line item and computes its total
func NewLineItem(productID uuid.UUID, productName string, unitPrice decimal.Decimal, quantity int) (LineItem, error) {
	if productID == uuid.Nil {
		return LineItem{}, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if quantity <= 0 {
		return LineItem{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return LineItem{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return LineItem{
		ProductID:   productID,
		ProductName: productName,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		LineTotal:   unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
	}, nil
}

// SumLineItems returns the total of all line totals
func SumLineItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal)
	}
	return total
}

// ScheduleMetadata is the installment plan as stored on a debt transaction
type ScheduleMetadata struct {
	Installments     int             `json:"installments"`
	InstallmentValue decimal.Decimal `json:"installment_value"`
	Frequency        Frequency       `json:"frequency"`
	FirstPaymentDate time.Time       `json:"first_payment_date"`
	FinalDueDate     time.Time       `json:"final_due_date"`
}

// ScheduleMetadataFromPlan captures the stored subset of a plan
func ScheduleMetadataFromPlan(plan *InstallmentPlan) *ScheduleMetadata {
	if plan == nil {
		return nil
	}
	return &ScheduleMetadata{
		Installments:     plan.Count,
		InstallmentValue: plan.InstallmentValue,
		Frequency:        plan.Frequency,
		FirstPaymentDate: plan.FirstDueDate,
		FinalDueDate:     plan.FinalDueDate,
	}
}

// CreditTransaction is an immutable ledger entry. Corrections are made
// with new transactions, never by editing history.
type CreditTransaction struct {
	shared.BaseEntity
	TenantID        uuid.UUID
	CreditAccountID uuid.UUID
	Type            TransactionType
	Amount          decimal.Decimal
	BalanceBefore   decimal.Decimal
	BalanceAfter    decimal.Decimal
	Description     string
	Date            time.Time
	Schedule        *ScheduleMetadata
	Items           []LineItem
	OperationID     *uuid.UUID
}

// NewCreditTransaction creates a ledger entry for an applied movement
func NewCreditTransaction(
	account *CreditAccount,
	txType TransactionType,
	amount decimal.Decimal,
	balanceBefore decimal.Decimal,
	description string,
) (*CreditTransaction, error) {
	if account == nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Credit account is required")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Transaction type must be 'debt' or 'payment'")
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	description = strings.TrimSpace(description)
	if description == "" {
		if txType == TransactionTypeDebt {
			description = "Compra no crediário"
		} else {
			description = "Pagamento"
		}
	}

	return &CreditTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        account.TenantID,
		CreditAccountID: account.ID,
		Type:            txType,
		Amount:          amount,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    account.TotalDebt,
		Description:     description,
		Date:            time.Now(),
	}, nil
}

// WithSchedule attaches installment plan metadata
func (t *CreditTransaction) WithSchedule(plan *InstallmentPlan) *CreditTransaction {
	t.Schedule = ScheduleMetadataFromPlan(plan)
	return t
}

// WithItems attaches the purchased line items
func (t *CreditTransaction) WithItems(items []LineItem) *CreditTransaction {
	t.Items = append([]LineItem(nil), items...)
	return t
}

// WithOperationID links the transaction to the debt operation that created it
func (t *CreditTransaction) WithOperationID(id uuid.UUID) *CreditTransaction {
	t.OperationID = &id
	return t
}

// WithDate sets the transaction date
func (t *CreditTransaction) WithDate(date time.Time) *CreditTransaction {
	if !date.IsZero() {
		t.Date = date
	}
	return t
}

// SignedAmount is positive for debts and negative for payments
func (t *CreditTransaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypePayment {
		return t.Amount.Neg()
	}
	return t.Amount
}
