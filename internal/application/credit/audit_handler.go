package credit

import (
	"context"

	"github.com/crediario/backend/internal/domain/credit"
	"github.com/crediario/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditHandler writes every credit account event to the log
type AuditHandler struct {
	logger *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(logger *zap.Logger) *AuditHandler {
	return &AuditHandler{logger: logger.Named("credit_audit")}
}

// EventTypes returns the event types this handler is interested in
func (h *AuditHandler) EventTypes() []string {
	return []string{
		credit.EventTypeCreditAccountCreated,
		credit.EventTypeDebtApplied,
		credit.EventTypePaymentApplied,
		credit.EventTypeCreditAccountDeleted,
	}
}

// Handle logs a credit account event
func (h *AuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("account_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *credit.CreditAccountCreatedEvent:
		fields = append(fields,
			zap.String("customer_id", e.CustomerID.String()),
			zap.String("customer_phone", e.CustomerPhone),
		)
	case *credit.DebtAppliedEvent:
		fields = append(fields,
			zap.String("amount", e.Amount.String()),
			zap.String("balance_before", e.BalanceBefore.String()),
			zap.String("balance_after", e.BalanceAfter.String()),
		)
	case *credit.PaymentAppliedEvent:
		fields = append(fields,
			zap.String("amount", e.Amount.String()),
			zap.String("balance_before", e.BalanceBefore.String()),
			zap.String("balance_after", e.BalanceAfter.String()),
		)
		if e.Absorbed.IsPositive() {
			fields = append(fields, zap.String("absorbed", e.Absorbed.String()))
		}
	}

	h.logger.Info("credit event", fields...)
	return nil
}
