package models

import (
	"github.com/crediario/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the catalog row read and decremented by debt operations
type ProductModel struct {
	TenantAggregateModel
	Name  string          `gorm:"type:varchar(200);not null"`
	Price decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Stock int             `gorm:"not null;default:0;check:chk_products_stock_non_negative,stock >= 0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		Price:               m.Price,
		Stock:               m.Stock,
	}
}

// ProductModelFromDomain converts a domain Product to its model
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		Name:  p.Name,
		Price: p.Price,
		Stock: p.Stock,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}
