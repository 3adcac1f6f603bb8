package catalog

import (
	"testing"

	"github.com/crediario/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates product", func(t *testing.T) {
		p, err := NewProduct(tenantID, " Camiseta ", decimal.NewFromInt(40), 2)
		require.NoError(t, err)
		assert.Equal(t, "Camiseta", p.Name)
		assert.Equal(t, 2, p.Stock)
		assert.True(t, p.InStock())
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		_, err := NewProduct(tenantID, "Camiseta", decimal.NewFromInt(40), -1)
		assert.Error(t, err)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProduct(tenantID, "Camiseta", decimal.NewFromInt(-1), 1)
		assert.Error(t, err)
	})
}

func TestProduct_Decrease(t *testing.T) {
	p, err := NewProduct(uuid.New(), "Camiseta", decimal.NewFromInt(40), 2)
	require.NoError(t, err)

	require.NoError(t, p.Decrease(1))
	assert.Equal(t, 1, p.Stock)

	err = p.Decrease(2)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 1, p.Stock)

	assert.Error(t, p.Decrease(0))

	require.NoError(t, p.Decrease(1))
	assert.False(t, p.InStock())
}
