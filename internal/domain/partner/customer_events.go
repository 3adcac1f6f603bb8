package partner

import (
	"github.com/crediario/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeCustomer identifies customer events
const AggregateTypeCustomer = "Customer"

// EventTypeCustomerCreated is published when a customer joins the directory
const EventTypeCustomerCreated = "CustomerCreated"

// CustomerCreatedEvent is published when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(customer *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, customer.ID, customer.TenantID),
		CustomerID:      customer.ID,
		Name:            customer.Name,
		Phone:           customer.Phone,
	}
}
