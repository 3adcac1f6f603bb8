package credit

import (
	"context"
	"errors"
	"fmt"

	"github.com/crediario/backend/internal/domain/catalog"
	"github.com/crediario/backend/internal/domain/credit"
	"github.com/crediario/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FormService backs the interactive parts of the sale form: item staging,
// schedule preview and customer lookup. It never writes.
type FormService struct {
	products catalog.ProductRepository
	resolver *credit.CustomerResolver
}

// NewFormService creates a new FormService
func NewFormService(products catalog.ProductRepository, resolver *credit.CustomerResolver) *FormService {
	return &FormService{
		products: products,
		resolver: resolver,
	}
}

// StageItem validates the new item on top of the staged ones against a
// fresh stock snapshot. A rejected item is reported and left out of the cart.
func (s *FormService) StageItem(ctx context.Context, tenantID uuid.UUID, req StageItemRequest) (*StageItemResponse, error) {
	all := append(append([]LineItemRequest(nil), req.StagedItems...), req.Item)
	items, snapshot, err := priceItems(ctx, s.products, tenantID, all)
	if err != nil {
		return nil, err
	}

	cart := credit.NewStagedCart(items[:len(items)-1]...)
	resp := &StageItemResponse{Accepted: true}

	if err := cart.Stage(items[len(items)-1], snapshot); err != nil {
		var domainErr *shared.DomainError
		if !errors.As(err, &domainErr) {
			return nil, err
		}
		resp.Accepted = false
		if stockErrs, ok := domainErr.Details["items"].([]credit.StockError); ok {
			resp.Errors = ToStockErrorResponses(stockErrs)
		}
	}

	staged := cart.Items()
	resp.Items = ToLineItemResponses(staged)
	resp.Total = credit.SumLineItems(staged)
	if resp.Errors == nil {
		resp.Errors = []StockErrorResponse{}
	}
	return resp, nil
}

// PreviewSchedule computes the installment plan for the current form values
func (s *FormService) PreviewSchedule(req SchedulePreviewRequest) (*PlanResponse, error) {
	plan, err := credit.ComputeScheduleFromInput(req.Total, req.Installments, req.Frequency, req.FirstDueDate)
	if err != nil {
		return nil, err
	}
	return ToPlanResponse(plan), nil
}

// ScheduleOptions lists the installment counts and frequencies on offer
func (s *FormService) ScheduleOptions() ScheduleOptionsResponse {
	freqs := credit.AllFrequencies()
	names := make([]string, len(freqs))
	for i, f := range freqs {
		names[i] = f.String()
	}
	return ScheduleOptionsResponse{
		Installments: credit.InstallmentOptions(),
		Frequencies:  names,
	}
}

// ResolveCustomer tells the form whether the customer is new, known or
// already has a credit account
func (s *FormService) ResolveCustomer(ctx context.Context, tenantID uuid.UUID, name, phone string) (*ResolutionResponse, error) {
	res, err := s.resolver.Resolve(ctx, tenantID, name, phone)
	if err != nil {
		return nil, err
	}
	return ToResolutionResponse(res), nil
}

// priceItems loads the products of reqs once and builds line items from
// their current name and price. Unknown products get a zero price and are
// absent from the snapshot, so stock validation rejects them.
func priceItems(ctx context.Context, products catalog.ProductRepository, tenantID uuid.UUID, reqs []LineItemRequest) ([]credit.LineItem, credit.StockSnapshot, error) {
	ids := make([]uuid.UUID, 0, len(reqs))
	seen := make(map[uuid.UUID]bool, len(reqs))
	for _, r := range reqs {
		if !seen[r.ProductID] {
			seen[r.ProductID] = true
			ids = append(ids, r.ProductID)
		}
	}

	found, err := products.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[uuid.UUID]catalog.Product, len(found))
	snapshot := make(credit.StockSnapshot, len(found))
	for _, p := range found {
		byID[p.ID] = p
		snapshot[p.ID] = credit.StockLevel{Name: p.Name, Available: p.Stock}
	}

	items := make([]credit.LineItem, len(reqs))
	for i, r := range reqs {
		name, price := "", decimal.Zero
		if p, ok := byID[r.ProductID]; ok {
			name, price = p.Name, p.Price
		}
		item, err := credit.NewLineItem(r.ProductID, name, price, r.Quantity)
		if err != nil {
			return nil, nil, validationError(err.Error(), map[string]any{"line": i})
		}
		items[i] = item
	}

	return items, snapshot, nil
}

func validationError(message string, details map[string]any) *shared.DomainError {
	err := shared.NewDomainError(shared.ErrValidation.Code, message)
	if len(details) == 0 {
		return err
	}
	return err.WithDetails(details)
}
