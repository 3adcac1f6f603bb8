package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository is the catalog boundary used by the credit engine
type ProductRepository interface {
	// FindByIDs loads the given products of a tenant; missing ids are skipped
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Product, error)

	// GetStock returns the current stock of a product
	GetStock(ctx context.Context, tenantID, productID uuid.UUID) (int, error)

	// DecrementStock removes quantity units from a product's stock
	DecrementStock(ctx context.Context, tenantID, productID uuid.UUID, quantity int) error
}
