package credit

import (
	"fmt"
	"strings"

	"github.com/crediario/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockLevel is a product's available stock at snapshot time
type StockLevel struct {
	Name      string
	Available int
}

// StockSnapshot maps product id to its available stock
type StockSnapshot map[uuid.UUID]StockLevel

// StockErrorKind distinguishes an empty product from an over-quantity request
type StockErrorKind string

const (
	StockErrorOutOfStock        StockErrorKind = "out_of_stock"
	StockErrorInsufficientStock StockErrorKind = "insufficient_stock"
)

// StockError reports one line item that cannot be served.
// Available is what was left after earlier items of the same operation.
type StockError struct {
	Line        int            `json:"line"`
	Kind        StockErrorKind `json:"kind"`
	ProductID   uuid.UUID      `json:"product_id"`
	ProductName string         `json:"product_name"`
	Available   int            `json:"available"`
	Requested   int            `json:"requested"`
}

func (e StockError) Error() string {
	if e.Kind == StockErrorOutOfStock {
		return fmt.Sprintf("%s está sem estoque", e.ProductName)
	}
	return fmt.Sprintf("%s: estoque insuficiente (disponível %d, solicitado %d)", e.ProductName, e.Available, e.Requested)
}

// ValidateLineItems checks items, in order, against snapshot. Quantities of
// a product already accepted earlier in items count against its stock.
// A nil result means every item can be served.
func ValidateLineItems(items []LineItem, snapshot StockSnapshot) StockErrors {
	var errs StockErrors
	staged := make(map[uuid.UUID]int, len(items))

	for i, item := range items {
		if e, rejected := checkLineItem(i, item, snapshot, staged[item.ProductID]); rejected {
			errs = append(errs, e)
			continue
		}
		staged[item.ProductID] += item.Quantity
	}

	return errs
}

// checkLineItem checks one item against what snapshot has left once
// staged units of the same product are taken out
func checkLineItem(line int, item LineItem, snapshot StockSnapshot, staged int) (StockError, bool) {
	level, ok := snapshot[item.ProductID]
	name := item.ProductName
	if ok && level.Name != "" {
		name = level.Name
	}

	if !ok || level.Available <= 0 {
		return StockError{
			Line:        line,
			Kind:        StockErrorOutOfStock,
			ProductID:   item.ProductID,
			ProductName: name,
			Available:   0,
			Requested:   item.Quantity,
		}, true
	}

	remaining := level.Available - staged
	if item.Quantity <= remaining {
		return StockError{}, false
	}
	if remaining < 0 {
		remaining = 0
	}
	return StockError{
		Line:        line,
		Kind:        StockErrorInsufficientStock,
		ProductID:   item.ProductID,
		ProductName: name,
		Available:   remaining,
		Requested:   item.Quantity,
	}, true
}

// StockErrors is the list of rejected line items of one validation
type StockErrors []StockError

func (s StockErrors) Error() string {
	msgs := make([]string, len(s))
	for i, e := range s {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// AsDomainError folds the list into a single domain error. The code is
// OUT_OF_STOCK only when every rejected item is out of stock.
func (s StockErrors) AsDomainError() *shared.DomainError {
	if len(s) == 0 {
		return nil
	}
	base := shared.ErrOutOfStock
	for _, e := range s {
		if e.Kind == StockErrorInsufficientStock {
			base = shared.ErrInsufficientStock
			break
		}
	}
	err := shared.NewDomainError(base.Code, s.Error())
	return err.WithDetails(map[string]any{"items": []StockError(s)})
}

// StagedCart accumulates line items while a debt operation is being built,
// rejecting any addition the snapshot cannot serve.
type StagedCart struct {
	items []LineItem
}

// NewStagedCart creates a cart pre-filled with already accepted items
func NewStagedCart(items ...LineItem) *StagedCart {
	return &StagedCart{items: append([]LineItem(nil), items...)}
}

// Stage validates item on top of the staged items and appends it on
// success. Every staged unit counts against the new item, and the item is
// refused while any staged line no longer fits the snapshot; the error
// then lists the stale lines too.
func (c *StagedCart) Stage(item LineItem, snapshot StockSnapshot) error {
	errs := ValidateLineItems(c.items, snapshot)

	staged := 0
	for _, it := range c.items {
		if it.ProductID == item.ProductID {
			staged += it.Quantity
		}
	}
	if e, rejected := checkLineItem(len(c.items), item, snapshot, staged); rejected {
		errs = append(errs, e)
	}
	if len(errs) > 0 {
		return errs.AsDomainError()
	}

	c.items = append(c.items, item)
	return nil
}

// Items returns a copy of the staged items
func (c *StagedCart) Items() []LineItem {
	return append([]LineItem(nil), c.items...)
}
