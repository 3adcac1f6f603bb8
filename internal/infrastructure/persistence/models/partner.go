package models

import (
	"github.com/crediario/backend/internal/domain/partner"
)

// CustomerModel is the customer directory row. Phone holds digits only.
type CustomerModel struct {
	TenantAggregateModel
	Name    string `gorm:"type:varchar(200);not null"`
	Phone   string `gorm:"type:varchar(20);not null;index:idx_customers_tenant_phone,priority:2"`
	Email   string `gorm:"type:varchar(200)"`
	Address string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		Phone:               m.Phone,
		Email:               m.Email,
		Address:             m.Address,
	}
}

// CustomerModelFromDomain converts a domain Customer to its model
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		Name:    c.Name,
		Phone:   partner.NormalizePhone(c.Phone),
		Email:   c.Email,
		Address: c.Address,
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}
