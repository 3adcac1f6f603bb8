package event

import (
	"testing"

	"github.com/crediario/backend/internal/domain/credit"
	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	t.Run("specific types", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newRecordingHandler()
		r.Register(h, credit.EventTypeDebtApplied, credit.EventTypePaymentApplied)

		assert.Len(t, r.GetHandlers(credit.EventTypeDebtApplied), 1)
		assert.Len(t, r.GetHandlers(credit.EventTypePaymentApplied), 1)
		assert.Empty(t, r.GetHandlers(credit.EventTypeCreditAccountDeleted))
	})

	t.Run("wildcard comes after typed handlers", func(t *testing.T) {
		r := NewHandlerRegistry()
		wildcard := newRecordingHandler()
		typed := newRecordingHandler()
		r.Register(wildcard)
		r.Register(typed, credit.EventTypeDebtApplied)

		handlers := r.GetHandlers(credit.EventTypeDebtApplied)
		assert.Len(t, handlers, 2)
		assert.Same(t, typed, handlers[0])
		assert.Same(t, wildcard, handlers[1])
	})

	t.Run("unregister removes every registration", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newRecordingHandler()
		other := newRecordingHandler()
		r.Register(h, credit.EventTypeDebtApplied, credit.EventTypePaymentApplied)
		r.Register(h)
		r.Register(other, credit.EventTypeDebtApplied)
		assert.Equal(t, 2, r.Len())

		r.Unregister(h)

		assert.Equal(t, 1, r.Len())
		assert.Empty(t, r.GetHandlers(credit.EventTypePaymentApplied))
		assert.Len(t, r.GetHandlers(credit.EventTypeDebtApplied), 1)
	})
}
