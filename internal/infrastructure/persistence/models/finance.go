package models

import (
	"time"

	"github.com/crediario/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashFlowEntryModel is a write-once cash_flow_entries row
type CashFlowEntryModel struct {
	BaseModel
	TenantID      uuid.UUID         `gorm:"type:uuid;not null;index:idx_cash_flow_tenant_date,priority:1"`
	Type          finance.EntryType `gorm:"type:varchar(10);not null"`
	Amount        decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Description   string            `gorm:"type:varchar(500);not null"`
	Date          time.Time         `gorm:"not null;index:idx_cash_flow_tenant_date,priority:2"`
	Category      string            `gorm:"type:varchar(100)"`
	PaymentMethod string            `gorm:"type:varchar(50)"`
	ReferenceID   *uuid.UUID        `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (CashFlowEntryModel) TableName() string {
	return "cash_flow_entries"
}

// ToDomain converts the model to a domain CashFlowEntry
func (m *CashFlowEntryModel) ToDomain() *finance.CashFlowEntry {
	return &finance.CashFlowEntry{
		BaseEntity:    m.BaseModel.ToDomain(),
		TenantID:      m.TenantID,
		Type:          m.Type,
		Amount:        m.Amount,
		Description:   m.Description,
		Date:          m.Date,
		Category:      m.Category,
		PaymentMethod: m.PaymentMethod,
		ReferenceID:   m.ReferenceID,
	}
}

// CashFlowEntryModelFromDomain converts a domain CashFlowEntry to its model
func CashFlowEntryModelFromDomain(e *finance.CashFlowEntry) *CashFlowEntryModel {
	m := &CashFlowEntryModel{
		TenantID:      e.TenantID,
		Type:          e.Type,
		Amount:        e.Amount,
		Description:   e.Description,
		Date:          e.Date,
		Category:      e.Category,
		PaymentMethod: e.PaymentMethod,
		ReferenceID:   e.ReferenceID,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// AllModels lists every model, in dependency order, for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&CustomerModel{},
		&ProductModel{},
		&CreditAccountModel{},
		&CreditTransactionModel{},
		&CashFlowEntryModel{},
	}
}
