package credit

import (
	"context"

	"github.com/crediario/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountFilter narrows account listings. Search matches name or phone.
type AccountFilter struct {
	shared.Filter
	HasDebt *bool
}

// AccountSummary aggregates a store's credit exposure
type AccountSummary struct {
	AccountCount     int64
	WithDebtCount    int64
	TotalOutstanding decimal.Decimal
}

// AccountRepository is the credit store's account side
type AccountRepository interface {
	// FindByID finds an active account within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CreditAccount, error)

	// FindByPhone finds the active account for a canonical phone
	FindByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (*CreditAccount, error)

	// FindByCustomerID finds the active account of a directory customer
	FindByCustomerID(ctx context.Context, tenantID, customerID uuid.UUID) (*CreditAccount, error)

	// ExistsByPhone reports whether an active account uses the phone
	ExistsByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (bool, error)

	// List returns active accounts and the total count
	List(ctx context.Context, tenantID uuid.UUID, filter AccountFilter) ([]CreditAccount, int64, error)

	// Create persists a new account. A concurrent account for the same
	// phone surfaces as ErrDuplicateAccount.
	Create(ctx context.Context, account *CreditAccount) error

	// SaveWithLock persists balance and state changes, failing with
	// shared.ErrConcurrencyConflict if the stored version moved on
	SaveWithLock(ctx context.Context, account *CreditAccount) error

	// Summary aggregates the tenant's active accounts
	Summary(ctx context.Context, tenantID uuid.UUID) (*AccountSummary, error)
}

// TransactionRepository is the credit store's append-only transaction log
type TransactionRepository interface {
	// Create appends a transaction
	Create(ctx context.Context, tx *CreditTransaction) error

	// FindByID finds a transaction within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CreditTransaction, error)

	// ListByAccount returns an account's transactions, newest first, and the total count
	ListByAccount(ctx context.Context, tenantID, accountID uuid.UUID, filter shared.Filter) ([]CreditTransaction, int64, error)
}
