package finance

import (
	"context"
	"time"

	"github.com/crediario/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CashFlowFilter narrows entry listings
type CashFlowFilter struct {
	shared.Filter
	Type     *EntryType
	DateFrom *time.Time
	DateTo   *time.Time
}

// CashFlowRepository is the cash-flow store's write contract plus listing
type CashFlowRepository interface {
	// PostEntry persists a new entry
	PostEntry(ctx context.Context, entry *CashFlowEntry) error

	// List returns entries for a tenant and the total count
	List(ctx context.Context, tenantID uuid.UUID, filter CashFlowFilter) ([]CashFlowEntry, int64, error)
}
