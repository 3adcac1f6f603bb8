package credit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/crediario/backend/internal/domain/partner"
	"github.com/crediario/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// ResolutionKind is the outcome of customer resolution
type ResolutionKind string

const (
	ResolutionNewCustomer        ResolutionKind = "new_customer"
	ResolutionExistingNoCredit   ResolutionKind = "existing_customer_no_credit"
	ResolutionExistingWithCredit ResolutionKind = "existing_customer_with_credit"
)

// Resolution tells the caller whether to reuse an account, reuse a
// directory customer or create a new one. Suggestion holds a customer
// matched by name only; it is never applied automatically.
type Resolution struct {
	Kind            ResolutionKind
	NormalizedPhone string
	Customer        *partner.Customer
	Account         *CreditAccount
	Suggestion      *partner.Customer
}

// HasCredit reports whether the customer already has a credit account
func (r *Resolution) HasCredit() bool {
	return r.Kind == ResolutionExistingWithCredit
}

// CustomerResolver deduplicates customers by canonical phone and exact name
type CustomerResolver struct {
	accounts  AccountRepository
	customers partner.CustomerRepository
}

// NewCustomerResolver creates a new CustomerResolver
func NewCustomerResolver(accounts AccountRepository, customers partner.CustomerRepository) *CustomerResolver {
	return &CustomerResolver{
		accounts:  accounts,
		customers: customers,
	}
}

// Resolve looks the customer up in precedence order: a credit account with
// the same phone, a directory customer with the same phone, then a
// case-insensitive exact name match offered as a suggestion.
func (r *CustomerResolver) Resolve(ctx context.Context, tenantID uuid.UUID, name, phone string) (*Resolution, error) {
	res := &Resolution{
		Kind:            ResolutionNewCustomer,
		NormalizedPhone: partner.NormalizePhone(phone),
	}

	if res.NormalizedPhone != "" {
		account, err := r.accounts.FindByPhone(ctx, tenantID, res.NormalizedPhone)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("find credit account by phone: %w", err)
		}
		if account != nil {
			res.Kind = ResolutionExistingWithCredit
			res.Account = account
			return res, nil
		}

		customer, err := r.customers.FindByPhone(ctx, tenantID, res.NormalizedPhone)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("find customer by phone: %w", err)
		}
		if customer != nil {
			res.Customer = customer
			account, err := r.accounts.FindByCustomerID(ctx, tenantID, customer.ID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return nil, fmt.Errorf("find credit account by customer: %w", err)
			}
			if account != nil {
				res.Kind = ResolutionExistingWithCredit
				res.Account = account
				return res, nil
			}
			res.Kind = ResolutionExistingNoCredit
		}
	}

	candidate, err := r.matchName(ctx, tenantID, name)
	if err != nil {
		return nil, err
	}
	if candidate != nil && (res.Customer == nil || candidate.ID != res.Customer.ID) {
		res.Suggestion = candidate
	}

	return res, nil
}

// SameName compares two names ignoring case and surrounding space
func SameName(a, b string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(a)) == fold.String(strings.TrimSpace(b))
}

func (r *CustomerResolver) matchName(ctx context.Context, tenantID uuid.UUID, name string) (*partner.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	candidates, err := r.customers.FindByName(ctx, tenantID, name)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("find customer by name: %w", err)
	}
	for i := range candidates {
		if SameName(candidates[i].Name, name) {
			return &candidates[i], nil
		}
	}
	return nil, nil
}
