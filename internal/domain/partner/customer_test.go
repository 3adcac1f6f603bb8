package partner

import (
	"testing"

	"github.com/crediario/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates customer with canonical phone", func(t *testing.T) {
		customer, err := NewCustomer(tenantID, "  Maria Silva ", "(11) 98765-4321")

		require.NoError(t, err)
		assert.Equal(t, "Maria Silva", customer.Name)
		assert.Equal(t, "11987654321", customer.Phone)
		assert.Equal(t, tenantID, customer.TenantID)
		assert.Equal(t, 1, customer.Version)
		require.Len(t, customer.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeCustomerCreated, customer.GetDomainEvents()[0].EventType())
	})

	t.Run("fails with empty name", func(t *testing.T) {
		customer, err := NewCustomer(tenantID, "   ", "11987654321")

		assert.Nil(t, customer)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_NAME", domainErr.Code)
	})

	t.Run("fails with non numeric phone", func(t *testing.T) {
		customer, err := NewCustomer(tenantID, "Maria", "11-abc-4321")

		assert.Nil(t, customer)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PHONE", domainErr.Code)
	})
}

func TestCustomer_SetContact(t *testing.T) {
	customer, err := NewCustomer(uuid.New(), "Maria", "11987654321")
	require.NoError(t, err)

	t.Run("accepts valid email and address", func(t *testing.T) {
		require.NoError(t, customer.SetContact("maria@example.com", "Rua A, 10"))
		assert.Equal(t, "maria@example.com", customer.Email)
		assert.Equal(t, "Rua A, 10", customer.Address)
		assert.Equal(t, 2, customer.Version)
	})

	t.Run("email is optional", func(t *testing.T) {
		require.NoError(t, customer.SetContact("", ""))
		assert.Empty(t, customer.Email)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		err := customer.SetContact("not-an-email", "")
		assert.Error(t, err)
	})
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"11987654321", "11987654321"},
		{"(11) 98765-4321", "11987654321"},
		{"+55 11 98765.4321", "5511987654321"},
		{"", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("(11) 98765-4321"))
	assert.NoError(t, ValidatePhone("+55 11 98765 4321"))
	assert.Error(t, ValidatePhone(""))
	assert.Error(t, ValidatePhone("1234567"))
	assert.Error(t, ValidatePhone("1198765432x"))
	assert.Error(t, ValidatePhone("1234567890123456"))
}
