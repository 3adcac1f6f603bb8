package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	AttrTenantID = attribute.Key("tenant_id")
	AttrOutcome  = attribute.Key("outcome")
	AttrKind     = attribute.Key("kind")
)

// CreditMetrics records the crediário business counters
type CreditMetrics struct {
	operations *Counter
	warnings   *Counter
	debtAmount *FloatCounter
	payments   *FloatCounter
}

// NewCreditMetrics registers the credit counters on meter
func NewCreditMetrics(meter metric.Meter) (*CreditMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m   CreditMetrics
		err error
	)
	if m.operations, err = NewCounter(meter,
		"crediario_debt_operations_total",
		"Debt operations submitted, by outcome",
		"{operation}",
	); err != nil {
		return nil, err
	}
	if m.warnings, err = NewCounter(meter,
		"crediario_operation_warnings_total",
		"Post-commit failures reported as warnings, by kind",
		"{warning}",
	); err != nil {
		return nil, err
	}
	if m.debtAmount, err = NewFloatCounter(meter,
		"crediario_debt_amount_total",
		"Debt booked on credit accounts",
		"BRL",
	); err != nil {
		return nil, err
	}
	if m.payments, err = NewFloatCounter(meter,
		"crediario_payments_total",
		"Payments applied to credit accounts",
		"BRL",
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordOperation counts a finished or aborted debt operation
func (m *CreditMetrics) RecordOperation(ctx context.Context, tenantID uuid.UUID, outcome string) {
	m.operations.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrOutcome.String(outcome))
}

// RecordWarning counts one warning of a degraded operation
func (m *CreditMetrics) RecordWarning(ctx context.Context, tenantID uuid.UUID, kind string) {
	m.warnings.Inc(ctx, AttrTenantID.String(tenantID.String()), AttrKind.String(kind))
}

// RecordDebtAmount adds a booked debt amount
func (m *CreditMetrics) RecordDebtAmount(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) {
	m.debtAmount.Add(ctx, amount.InexactFloat64(), AttrTenantID.String(tenantID.String()))
}

// RecordPayment adds an applied payment amount
func (m *CreditMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) {
	m.payments.Add(ctx, amount.InexactFloat64(), AttrTenantID.String(tenantID.String()))
}
