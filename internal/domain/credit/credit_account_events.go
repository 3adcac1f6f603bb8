package credit

import (
	"github.com/crediario/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeCreditAccount identifies credit account events
const AggregateTypeCreditAccount = "CreditAccount"

// Event type constants
const (
	EventTypeCreditAccountCreated = "CreditAccountCreated"
	EventTypeDebtApplied          = "DebtApplied"
	EventTypePaymentApplied       = "PaymentApplied"
	EventTypeCreditAccountDeleted = "CreditAccountDeleted"
)

// CreditAccountCreatedEvent is published when an account is opened
type CreditAccountCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID    uuid.UUID `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
}

// NewCreditAccountCreatedEvent creates a new CreditAccountCreatedEvent
func NewCreditAccountCreatedEvent(a *CreditAccount) *CreditAccountCreatedEvent {
	return &CreditAccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditAccountCreated, AggregateTypeCreditAccount, a.ID, a.TenantID),
		CustomerID:      a.CustomerID,
		CustomerName:    a.CustomerName,
		CustomerPhone:   a.CustomerPhone,
	}
}

// DebtAppliedEvent is published when debt is added to an account
type DebtAppliedEvent struct {
	shared.BaseDomainEvent
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}

// NewDebtAppliedEvent creates a new DebtAppliedEvent
func NewDebtAppliedEvent(a *CreditAccount, amount, before decimal.Decimal) *DebtAppliedEvent {
	return &DebtAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDebtApplied, AggregateTypeCreditAccount, a.ID, a.TenantID),
		Amount:          amount,
		BalanceBefore:   before,
		BalanceAfter:    a.TotalDebt,
	}
}

// PaymentAppliedEvent is published when a payment reduces an account.
// Absorbed is the part of the payment that exceeded the balance.
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	Amount        decimal.Decimal `json:"amount"`
	Absorbed      decimal.Decimal `json:"absorbed"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(a *CreditAccount, amount, before, absorbed decimal.Decimal) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentApplied, AggregateTypeCreditAccount, a.ID, a.TenantID),
		Amount:          amount,
		Absorbed:        absorbed,
		BalanceBefore:   before,
		BalanceAfter:    a.TotalDebt,
	}
}

// CreditAccountDeletedEvent is published when an account is deleted
type CreditAccountDeletedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
}

// NewCreditAccountDeletedEvent creates a new CreditAccountDeletedEvent
func NewCreditAccountDeletedEvent(a *CreditAccount) *CreditAccountDeletedEvent {
	return &CreditAccountDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditAccountDeleted, AggregateTypeCreditAccount, a.ID, a.TenantID),
		CustomerID:      a.CustomerID,
	}
}
