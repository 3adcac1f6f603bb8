package catalog

import (
	"strings"

	"github.com/crediario/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item as seen by the credit engine: a price and
// an integer stock counter owned by the catalog.
type Product struct {
	shared.TenantAggregateRoot
	Name  string
	Price decimal.Decimal
	Stock int
}

// NewProduct creates a product with an initial stock level
func NewProduct(tenantID uuid.UUID, name string, price decimal.Decimal, stock int) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Product stock cannot be negative")
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Price:               price,
		Stock:               stock,
	}, nil
}

// InStock reports whether any unit is available
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// Decrease removes quantity units from stock
func (p *Product) Decrease(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if quantity > p.Stock {
		return shared.ErrInsufficientStock.WithDetails(map[string]any{
			"product_id": p.ID.String(),
			"product":    p.Name,
			"available":  p.Stock,
			"requested":  quantity,
		})
	}
	p.Stock -= quantity
	p.Touch()
	return nil
}
