package credit

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Operation outcomes recorded by Metrics
const (
	OutcomeSuccess  = "success"
	OutcomeDegraded = "degraded"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics records credit business metrics.
// telemetry.CreditMetrics is the OpenTelemetry implementation.
type Metrics interface {
	RecordOperation(ctx context.Context, tenantID uuid.UUID, outcome string)
	RecordWarning(ctx context.Context, tenantID uuid.UUID, kind string)
	RecordDebtAmount(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal)
	RecordPayment(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal)
}

type nopMetrics struct{}

func (nopMetrics) RecordOperation(context.Context, uuid.UUID, string)           {}
func (nopMetrics) RecordWarning(context.Context, uuid.UUID, string)             {}
func (nopMetrics) RecordDebtAmount(context.Context, uuid.UUID, decimal.Decimal) {}
func (nopMetrics) RecordPayment(context.Context, uuid.UUID, decimal.Decimal)    {}

func metricsOrNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
