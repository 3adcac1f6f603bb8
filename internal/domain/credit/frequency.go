package credit

import (
	"fmt"
	"strings"
	"time"
)

// Frequency is the spacing between installment due dates
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// AllFrequencies lists the supported frequencies in display order
func AllFrequencies() []Frequency {
	return []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly}
}

// IsValid checks if the frequency is supported
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// String returns the string representation of Frequency
func (f Frequency) String() string {
	return string(f)
}

// ParseFrequency parses a frequency name, ignoring case and surrounding space
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", invalidSchedule(fmt.Sprintf("unknown frequency %q", s))
	}
	return f, nil
}

// dueDate returns the due date of the n-th installment (1-indexed).
// Months use calendar arithmetic anchored on the first due date.
func (f Frequency) dueDate(first time.Time, n int) time.Time {
	offset := n - 1
	switch f {
	case FrequencyDaily:
		return first.AddDate(0, 0, offset)
	case FrequencyWeekly:
		return first.AddDate(0, 0, 7*offset)
	case FrequencyBiweekly:
		return first.AddDate(0, 0, 14*offset)
	default:
		return first.AddDate(0, offset, 0)
	}
}
