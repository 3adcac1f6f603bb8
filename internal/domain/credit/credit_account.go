package credit

import (
	"time"

	"github.com/crediario/backend/internal/domain/partner"
	"github.com/crediario/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStatus is the lifecycle state of a credit account
type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "active"
	AccountStatusDeleted AccountStatus = "deleted"
)

// CreditAccount is the per-customer running balance. TotalDebt never goes
// below zero and only changes through ApplyDebt and ApplyPayment.
type CreditAccount struct {
	shared.TenantAggregateRoot
	CustomerID    uuid.UUID
	CustomerName  string
	CustomerPhone string
	TotalDebt     decimal.Decimal
	DeletedAt     *time.Time
}

// NewCreditAccount opens an account for a directory customer
func NewCreditAccount(customer *partner.Customer) (*CreditAccount, error) {
	if customer == nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer is required")
	}
	phone := partner.NormalizePhone(customer.Phone)
	if phone == "" {
		return nil, shared.NewDomainError("INVALID_PHONE", "Customer phone is required to open a credit account")
	}

	account := &CreditAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(customer.TenantID),
		CustomerID:          customer.ID,
		CustomerName:        customer.Name,
		CustomerPhone:       phone,
		TotalDebt:           decimal.Zero,
	}

	account.AddDomainEvent(NewCreditAccountCreatedEvent(account))

	return account, nil
}

// ApplyDebt adds amount to the balance and returns the new balance
func (a *CreditAccount) ApplyDebt(amount decimal.Decimal) (decimal.Decimal, error) {
	if err := a.checkMutable(); err != nil {
		return a.TotalDebt, err
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return a.TotalDebt, ErrInvalidAmount
	}

	before := a.TotalDebt
	a.TotalDebt = before.Add(amount)
	a.Touch()

	a.AddDomainEvent(NewDebtAppliedEvent(a, amount, before))

	return a.TotalDebt, nil
}

// ApplyPayment subtracts amount from the balance, clamping at zero.
// Whatever exceeds the outstanding balance is discarded, not kept as credit.
func (a *CreditAccount) ApplyPayment(amount decimal.Decimal) (decimal.Decimal, error) {
	if err := a.checkMutable(); err != nil {
		return a.TotalDebt, err
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return a.TotalDebt, ErrInvalidAmount
	}

	before := a.TotalDebt
	after := before.Sub(amount)
	absorbed := decimal.Zero
	if after.IsNegative() {
		absorbed = after.Neg()
		after = decimal.Zero
	}
	a.TotalDebt = after
	a.Touch()

	a.AddDomainEvent(NewPaymentAppliedEvent(a, amount, before, absorbed))

	return a.TotalDebt, nil
}

// HasDebt reports whether the account has an outstanding balance
func (a *CreditAccount) HasDebt() bool {
	return a.TotalDebt.IsPositive()
}

// CanDelete reports whether the account may be deleted
func (a *CreditAccount) CanDelete() bool {
	return !a.IsDeleted() && !a.HasDebt()
}

// MarkDeleted moves the account to the terminal Deleted state.
// Only a zero-balance account can get there.
func (a *CreditAccount) MarkDeleted() error {
	if a.IsDeleted() {
		return ErrAccountDeleted
	}
	if a.HasDebt() {
		return ErrNonZeroBalance.WithDetails(map[string]any{
			"account_id": a.ID.String(),
			"total_debt": a.TotalDebt.StringFixed(2),
		})
	}

	now := time.Now()
	a.DeletedAt = &now
	a.Touch()

	a.AddDomainEvent(NewCreditAccountDeletedEvent(a))

	return nil
}

// IsDeleted reports whether the account reached the Deleted state
func (a *CreditAccount) IsDeleted() bool {
	return a.DeletedAt != nil
}

// Status returns the lifecycle state
func (a *CreditAccount) Status() AccountStatus {
	if a.IsDeleted() {
		return AccountStatusDeleted
	}
	return AccountStatusActive
}

func (a *CreditAccount) checkMutable() error {
	if a.IsDeleted() {
		return ErrAccountDeleted
	}
	return nil
}
