package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCashFlowEntry(t *testing.T) {
	tenantID := uuid.New()
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("creates income entry", func(t *testing.T) {
		ref := uuid.New()
		entry, err := NewCashFlowEntry(tenantID, EntryTypeIncome, decimal.RequireFromString("120.004"), "Crediário - Maria", date)
		require.NoError(t, err)
		entry.WithCategory("Crediário").WithPaymentMethod("crediario").WithReference(ref)

		assert.Equal(t, EntryTypeIncome, entry.Type)
		assert.True(t, entry.Amount.Equal(decimal.RequireFromString("120.00")))
		assert.Equal(t, "Crediário", entry.Category)
		assert.Equal(t, "crediario", entry.PaymentMethod)
		require.NotNil(t, entry.ReferenceID)
		assert.Equal(t, ref, *entry.ReferenceID)
		assert.Equal(t, date, entry.Date)
	})

	t.Run("defaults date to now", func(t *testing.T) {
		entry, err := NewCashFlowEntry(tenantID, EntryTypeExpense, decimal.NewFromInt(5), "Frete", time.Time{})
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now(), entry.Date, time.Minute)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewCashFlowEntry(tenantID, EntryType("transfer"), decimal.NewFromInt(5), "x", date)
		assert.Error(t, err)
		_, err = NewCashFlowEntry(tenantID, EntryTypeIncome, decimal.Zero, "x", date)
		assert.Error(t, err)
		_, err = NewCashFlowEntry(tenantID, EntryTypeIncome, decimal.NewFromInt(1), "  ", date)
		assert.Error(t, err)
	})
}
