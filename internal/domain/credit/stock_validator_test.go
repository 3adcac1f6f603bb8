package credit

import (
	"testing"

	"github.com/crediario/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineItem(t *testing.T, productID uuid.UUID, qty int) LineItem {
	t.Helper()
	item, err := NewLineItem(productID, "Produto", decimal.NewFromInt(10), qty)
	require.NoError(t, err)
	return item
}

func TestValidateLineItems(t *testing.T) {
	x := uuid.New()
	y := uuid.New()
	snapshot := StockSnapshot{
		x: {Name: "Camiseta", Available: 2},
		y: {Name: "Boné", Available: 0},
	}

	t.Run("accepts items within stock", func(t *testing.T) {
		errs := ValidateLineItems([]LineItem{lineItem(t, x, 1), lineItem(t, x, 1)}, snapshot)
		assert.Empty(t, errs)
	})

	t.Run("zero stock is out of stock", func(t *testing.T) {
		errs := ValidateLineItems([]LineItem{lineItem(t, y, 1)}, snapshot)
		require.Len(t, errs, 1)
		assert.Equal(t, StockErrorOutOfStock, errs[0].Kind)
		assert.Equal(t, "Boné", errs[0].ProductName)
	})

	t.Run("unknown product is out of stock", func(t *testing.T) {
		errs := ValidateLineItems([]LineItem{lineItem(t, uuid.New(), 1)}, snapshot)
		require.Len(t, errs, 1)
		assert.Equal(t, StockErrorOutOfStock, errs[0].Kind)
	})

	t.Run("over quantity is insufficient stock", func(t *testing.T) {
		errs := ValidateLineItems([]LineItem{lineItem(t, x, 3)}, snapshot)
		require.Len(t, errs, 1)
		assert.Equal(t, StockError{
			Line:        0,
			Kind:        StockErrorInsufficientStock,
			ProductID:   x,
			ProductName: "Camiseta",
			Available:   2,
			Requested:   3,
		}, errs[0])
	})

	t.Run("staged quantities accumulate per product", func(t *testing.T) {
		items := []LineItem{lineItem(t, x, 1), lineItem(t, x, 1), lineItem(t, x, 1)}
		errs := ValidateLineItems(items, snapshot)
		require.Len(t, errs, 1)
		assert.Equal(t, 2, errs[0].Line)
		assert.Equal(t, StockErrorInsufficientStock, errs[0].Kind)
		assert.Equal(t, 0, errs[0].Available)
		assert.Equal(t, 1, errs[0].Requested)
	})

	t.Run("rejected items do not consume stock", func(t *testing.T) {
		items := []LineItem{lineItem(t, x, 5), lineItem(t, x, 2)}
		errs := ValidateLineItems(items, snapshot)
		require.Len(t, errs, 1)
		assert.Equal(t, 0, errs[0].Line)
	})
}

func TestStockErrors_AsDomainError(t *testing.T) {
	assert.Nil(t, StockErrors(nil).AsDomainError())

	out := StockErrors{{Kind: StockErrorOutOfStock, ProductName: "Boné"}}
	assert.ErrorIs(t, out.AsDomainError(), shared.ErrOutOfStock)

	mixed := StockErrors{
		{Kind: StockErrorOutOfStock, ProductName: "Boné"},
		{Kind: StockErrorInsufficientStock, ProductName: "Camiseta", Available: 1, Requested: 2},
	}
	err := mixed.AsDomainError()
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Boné")
	assert.Contains(t, err.Error(), "disponível 1, solicitado 2")
	assert.Len(t, err.Details["items"], 2)
}

func TestStagedCart_Stage(t *testing.T) {
	x := uuid.New()
	snapshot := StockSnapshot{x: {Name: "Produto X", Available: 2}}
	cart := NewStagedCart()

	require.NoError(t, cart.Stage(lineItem(t, x, 1), snapshot))
	require.NoError(t, cart.Stage(lineItem(t, x, 1), snapshot))

	err := cart.Stage(lineItem(t, x, 1), snapshot)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	items := domainErr.Details["items"].([]StockError)
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].Available)
	assert.Equal(t, 1, items[0].Requested)

	assert.Len(t, cart.Items(), 2)
}

func TestStagedCart_Stage_StockDroppedBelowStaged(t *testing.T) {
	x := uuid.New()
	cart := NewStagedCart(lineItem(t, x, 2))
	snapshot := StockSnapshot{x: {Name: "Produto X", Available: 1}}

	err := cart.Stage(lineItem(t, x, 1), snapshot)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)

	items := domainErr.Details["items"].([]StockError)
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].Line)
	assert.Equal(t, 1, items[0].Available)
	assert.Equal(t, 2, items[0].Requested)
	assert.Equal(t, 1, items[1].Line)
	assert.Equal(t, 0, items[1].Available)

	assert.Len(t, cart.Items(), 1)
}

func TestStagedCart_Stage_CountsStagedUnitsOfOtherProducts(t *testing.T) {
	x, y := uuid.New(), uuid.New()
	cart := NewStagedCart(lineItem(t, x, 1))
	snapshot := StockSnapshot{
		x: {Name: "Produto X", Available: 1},
		y: {Name: "Produto Y", Available: 1},
	}

	require.NoError(t, cart.Stage(lineItem(t, y, 1), snapshot))
	assert.Len(t, cart.Items(), 2)
}
