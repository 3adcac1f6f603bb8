package partner

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository is the customer directory of a store
type CustomerRepository interface {
	// FindByID finds a customer by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)

	// FindByPhone finds a customer by canonical (digits-only) phone
	FindByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (*Customer, error)

	// FindByName returns customers whose name equals name ignoring case
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) ([]Customer, error)

	// Create persists a new customer
	Create(ctx context.Context, customer *Customer) error
}
