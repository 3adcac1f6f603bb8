package models

import (
	"time"

	"github.com/crediario/backend/internal/domain/credit"
	"github.com/crediario/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditAccountModel is the credit_accounts row. At most one live account
// per tenant and phone is enforced by ux_credit_accounts_tenant_phone.
type CreditAccountModel struct {
	BaseModel
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_credit_accounts_tenant_phone,priority:1,where:deleted_at IS NULL"`
	Version       int             `gorm:"not null;default:1"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName  string          `gorm:"type:varchar(200);not null"`
	CustomerPhone string          `gorm:"type:varchar(20);not null;uniqueIndex:ux_credit_accounts_tenant_phone,priority:2,where:deleted_at IS NULL"`
	TotalDebt     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DeletedAt     *time.Time      `gorm:"index"`
}

// TableName returns the table name for GORM
func (CreditAccountModel) TableName() string {
	return "credit_accounts"
}

// ToDomain converts the model to a domain CreditAccount
func (m *CreditAccountModel) ToDomain() *credit.CreditAccount {
	return &credit.CreditAccount{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			TenantID:   m.TenantID,
			Version:    m.Version,
		},
		CustomerID:    m.CustomerID,
		CustomerName:  m.CustomerName,
		CustomerPhone: m.CustomerPhone,
		TotalDebt:     m.TotalDebt,
		DeletedAt:     m.DeletedAt,
	}
}

// CreditAccountModelFromDomain converts a domain CreditAccount to its model
func CreditAccountModelFromDomain(a *credit.CreditAccount) *CreditAccountModel {
	m := &CreditAccountModel{
		TenantID:      a.TenantID,
		Version:       a.Version,
		CustomerID:    a.CustomerID,
		CustomerName:  a.CustomerName,
		CustomerPhone: a.CustomerPhone,
		TotalDebt:     a.TotalDebt,
		DeletedAt:     a.DeletedAt,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// CreditTransactionModel is an append-only credit_transactions row.
// Schedule and Items are stored as JSON documents.
type CreditTransactionModel struct {
	BaseModel
	TenantID        uuid.UUID                `gorm:"type:uuid;not null;index"`
	CreditAccountID uuid.UUID                `gorm:"type:uuid;not null;index:idx_credit_transactions_account_date,priority:1"`
	Type            credit.TransactionType   `gorm:"type:varchar(10);not null"`
	Amount          decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	BalanceBefore   decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	BalanceAfter    decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	Description     string                   `gorm:"type:varchar(500);not null"`
	Date            time.Time                `gorm:"not null;index:idx_credit_transactions_account_date,priority:2"`
	Schedule        *credit.ScheduleMetadata `gorm:"type:jsonb;serializer:json"`
	Items           []credit.LineItem        `gorm:"type:jsonb;serializer:json"`
	OperationID     *uuid.UUID               `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (CreditTransactionModel) TableName() string {
	return "credit_transactions"
}

// ToDomain converts the model to a domain CreditTransaction
func (m *CreditTransactionModel) ToDomain() *credit.CreditTransaction {
	return &credit.CreditTransaction{
		BaseEntity:      m.BaseModel.ToDomain(),
		TenantID:        m.TenantID,
		CreditAccountID: m.CreditAccountID,
		Type:            m.Type,
		Amount:          m.Amount,
		BalanceBefore:   m.BalanceBefore,
		BalanceAfter:    m.BalanceAfter,
		Description:     m.Description,
		Date:            m.Date,
		Schedule:        m.Schedule,
		Items:           m.Items,
		OperationID:     m.OperationID,
	}
}

// CreditTransactionModelFromDomain converts a domain CreditTransaction to its model
func CreditTransactionModelFromDomain(tx *credit.CreditTransaction) *CreditTransactionModel {
	m := &CreditTransactionModel{
		TenantID:        tx.TenantID,
		CreditAccountID: tx.CreditAccountID,
		Type:            tx.Type,
		Amount:          tx.Amount,
		BalanceBefore:   tx.BalanceBefore,
		BalanceAfter:    tx.BalanceAfter,
		Description:     tx.Description,
		Date:            tx.Date,
		Schedule:        tx.Schedule,
		Items:           tx.Items,
		OperationID:     tx.OperationID,
	}
	m.FromDomainBaseEntity(tx.BaseEntity)
	return m
}
