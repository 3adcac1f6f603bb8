package credit

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Installment count bounds (1x through 24x)
const (
	MinInstallments = 1
	MaxInstallments = 24
)

// InstallmentPlan is the repayment schedule derived from a debt total.
// It is recomputed on every input change and never mutated once stored.
type InstallmentPlan struct {
	Total            decimal.Decimal
	Count            int
	Frequency        Frequency
	FirstDueDate     time.Time
	InstallmentValue decimal.Decimal
	DueDates         []time.Time
	FinalDueDate     time.Time
}

// InstallmentOption is one entry of the installment count picker
type InstallmentOption struct {
	Count int    `json:"count"`
	Label string `json:"label"`
}

// InstallmentOptions returns the closed 1x..24x list
func InstallmentOptions() []InstallmentOption {
	opts := make([]InstallmentOption, 0, MaxInstallments)
	for n := MinInstallments; n <= MaxInstallments; n++ {
		opts = append(opts, InstallmentOption{Count: n, Label: fmt.Sprintf("%dx", n)})
	}
	return opts
}

// ComputeSchedule splits total into count installments spaced by frequency.
// The installment value is total/count rounded to cents; the rounding
// remainder is not redistributed, so value*count may drift from total by
// up to one cent per installment.
func ComputeSchedule(total decimal.Decimal, count int, frequency Frequency, firstDueDate time.Time) (*InstallmentPlan, error) {
	if count < MinInstallments || count > MaxInstallments {
		return nil, invalidSchedule(fmt.Sprintf("installment count must be between %d and %d", MinInstallments, MaxInstallments))
	}
	if !frequency.IsValid() {
		return nil, invalidSchedule(fmt.Sprintf("unknown frequency %q", frequency))
	}
	if !total.IsPositive() {
		return nil, invalidSchedule("total must be greater than zero")
	}
	if firstDueDate.IsZero() {
		return nil, invalidSchedule("first due date is required")
	}
	first := calendarDate(firstDueDate)
	if !validCalendarYear(first) {
		return nil, invalidSchedule(fmt.Sprintf("due date year must be between %d and %d", MinDueDateYear, MaxDueDateYear))
	}

	dueDates := make([]time.Time, count)
	for i := 1; i <= count; i++ {
		dueDates[i-1] = frequency.dueDate(first, i)
	}

	return &InstallmentPlan{
		Total:            total,
		Count:            count,
		Frequency:        frequency,
		FirstDueDate:     first,
		InstallmentValue: total.Div(decimal.NewFromInt(int64(count))).Round(2),
		DueDates:         dueDates,
		FinalDueDate:     dueDates[count-1],
	}, nil
}

// ComputeScheduleFromInput is ComputeSchedule over raw form input:
// a frequency name and a DD/MM/YYYY first due date.
func ComputeScheduleFromInput(total decimal.Decimal, count int, frequency, firstDueDate string) (*InstallmentPlan, error) {
	freq, err := ParseFrequency(frequency)
	if err != nil {
		return nil, err
	}
	first, err := ParseDueDate(firstDueDate)
	if err != nil {
		return nil, err
	}
	return ComputeSchedule(total, count, freq, first)
}

// ScheduledTotal is InstallmentValue * Count
func (p *InstallmentPlan) ScheduledTotal() decimal.Decimal {
	return p.InstallmentValue.Mul(decimal.NewFromInt(int64(p.Count)))
}

// RoundingDrift is ScheduledTotal - Total
func (p *InstallmentPlan) RoundingDrift() decimal.Decimal {
	return p.ScheduledTotal().Sub(p.Total)
}
