package credit

import (
	"testing"

	"github.com/crediario/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount(t *testing.T) *CreditAccount {
	t.Helper()
	customer, err := partner.NewCustomer(uuid.New(), "Maria Silva", "(11) 98765-4321")
	require.NoError(t, err)
	account, err := NewCreditAccount(customer)
	require.NoError(t, err)
	account.ClearDomainEvents()
	return account
}

func TestNewCreditAccount(t *testing.T) {
	customer, err := partner.NewCustomer(uuid.New(), "Maria Silva", "(11) 98765-4321")
	require.NoError(t, err)

	account, err := NewCreditAccount(customer)
	require.NoError(t, err)

	assert.Equal(t, customer.ID, account.CustomerID)
	assert.Equal(t, customer.TenantID, account.TenantID)
	assert.Equal(t, "11987654321", account.CustomerPhone)
	assert.True(t, account.TotalDebt.IsZero())
	assert.Equal(t, AccountStatusActive, account.Status())
	require.Len(t, account.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeCreditAccountCreated, account.GetDomainEvents()[0].EventType())

	_, err = NewCreditAccount(nil)
	assert.Error(t, err)
}

func TestCreditAccount_ApplyDebt(t *testing.T) {
	account := newTestAccount(t)

	balance, err := account.ApplyDebt(decimal.RequireFromString("50.00"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("50.00")))

	balance, err = account.ApplyDebt(decimal.RequireFromString("120.00"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("170.00")))
	assert.Equal(t, 3, account.Version)

	for _, amount := range []string{"0", "-10", "0.001"} {
		_, err = account.ApplyDebt(decimal.RequireFromString(amount))
		assert.ErrorIs(t, err, ErrInvalidAmount, amount)
	}
	assert.True(t, account.TotalDebt.Equal(decimal.RequireFromString("170.00")))

	events := account.GetDomainEvents()
	require.Len(t, events, 2)
	applied := events[1].(*DebtAppliedEvent)
	assert.True(t, applied.BalanceBefore.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, applied.BalanceAfter.Equal(decimal.RequireFromString("170.00")))
}

func TestCreditAccount_ApplyPayment(t *testing.T) {
	t.Run("reduces the balance", func(t *testing.T) {
		account := newTestAccount(t)
		_, err := account.ApplyDebt(decimal.NewFromInt(100))
		require.NoError(t, err)

		balance, err := account.ApplyPayment(decimal.NewFromInt(30))
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(70)))
	})

	t.Run("clamps at zero and discards the excess", func(t *testing.T) {
		account := newTestAccount(t)
		_, err := account.ApplyDebt(decimal.NewFromInt(50))
		require.NoError(t, err)

		balance, err := account.ApplyPayment(decimal.NewFromInt(80))
		require.NoError(t, err)
		assert.True(t, balance.IsZero())

		events := account.GetDomainEvents()
		paid := events[len(events)-1].(*PaymentAppliedEvent)
		assert.True(t, paid.Absorbed.Equal(decimal.NewFromInt(30)))
	})

	t.Run("never goes negative for any balance and amount", func(t *testing.T) {
		balances := []string{"0", "0.01", "10", "99.99", "1000"}
		amounts := []string{"0.01", "5", "10", "100", "5000"}
		for _, b := range balances {
			for _, a := range amounts {
				account := newTestAccount(t)
				account.TotalDebt = decimal.RequireFromString(b)

				got, err := account.ApplyPayment(decimal.RequireFromString(a))
				require.NoError(t, err)

				want := decimal.Max(decimal.Zero, decimal.RequireFromString(b).Sub(decimal.RequireFromString(a)))
				assert.True(t, got.Equal(want), "balance %s payment %s: got %s want %s", b, a, got, want)
			}
		}
	})

	t.Run("rejects non positive amounts", func(t *testing.T) {
		account := newTestAccount(t)
		_, err := account.ApplyPayment(decimal.Zero)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestCreditAccount_MarkDeleted(t *testing.T) {
	t.Run("refuses while debt is outstanding", func(t *testing.T) {
		account := newTestAccount(t)
		_, err := account.ApplyDebt(decimal.NewFromInt(10))
		require.NoError(t, err)

		assert.False(t, account.CanDelete())
		err = account.MarkDeleted()
		assert.ErrorIs(t, err, ErrNonZeroBalance)
		assert.False(t, account.IsDeleted())
	})

	t.Run("deletes a settled account", func(t *testing.T) {
		account := newTestAccount(t)
		_, err := account.ApplyDebt(decimal.NewFromInt(10))
		require.NoError(t, err)
		_, err = account.ApplyPayment(decimal.NewFromInt(10))
		require.NoError(t, err)

		require.NoError(t, account.MarkDeleted())
		assert.Equal(t, AccountStatusDeleted, account.Status())
	})

	t.Run("deleted is terminal", func(t *testing.T) {
		account := newTestAccount(t)
		require.NoError(t, account.MarkDeleted())

		assert.ErrorIs(t, account.MarkDeleted(), ErrAccountDeleted)
		_, err := account.ApplyDebt(decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrAccountDeleted)
		_, err = account.ApplyPayment(decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrAccountDeleted)
	})
}
