package finance

import (
	"strings"
	"time"

	"github.com/crediario/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType is the direction of a cash-flow entry
type EntryType string

const (
	EntryTypeIncome  EntryType = "income"
	EntryTypeExpense EntryType = "expense"
)

// IsValid checks if the type is a known EntryType
func (t EntryType) IsValid() bool {
	return t == EntryTypeIncome || t == EntryTypeExpense
}

// String returns the string representation of EntryType
func (t EntryType) String() string {
	return string(t)
}

// CashFlowEntry is one posted income or expense line. Entries are
// write-once; the reporting projection reads them as they are.
type CashFlowEntry struct {
	shared.BaseEntity
	TenantID      uuid.UUID
	Type          EntryType
	Amount        decimal.Decimal
	Description   string
	Date          time.Time
	Category      string
	PaymentMethod string
	ReferenceID   *uuid.UUID
}

// NewCashFlowEntry creates an entry after checking its fields
func NewCashFlowEntry(tenantID uuid.UUID, entryType EntryType, amount decimal.Decimal, description string, date time.Time) (*CashFlowEntry, error) {
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTRY_TYPE", "Entry type must be 'income' or 'expense'")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if date.IsZero() {
		date = time.Now()
	}

	return &CashFlowEntry{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		Type:        entryType,
		Amount:      amount.Round(2),
		Description: description,
		Date:        date,
	}, nil
}

// WithCategory sets the reporting category
func (e *CashFlowEntry) WithCategory(category string) *CashFlowEntry {
	e.Category = category
	return e
}

// WithPaymentMethod sets how the money moved
func (e *CashFlowEntry) WithPaymentMethod(method string) *CashFlowEntry {
	e.PaymentMethod = method
	return e
}

// WithReference links the entry to the document that caused it
func (e *CashFlowEntry) WithReference(id uuid.UUID) *CashFlowEntry {
	e.ReferenceID = &id
	return e
}
