package credit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DueDateLayout is the user-facing due date format (DD/MM/YYYY)
const DueDateLayout = "02/01/2006"

// Accepted due-date years, inclusive
const (
	MinDueDateYear = 2020
	MaxDueDateYear = 2030
)

var dueDatePattern = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

// ParseDueDate parses a DD/MM/YYYY date. The date must exist on the
// calendar and fall within [MinDueDateYear, MaxDueDateYear].
func ParseDueDate(s string) (time.Time, error) {
	m := dueDatePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, invalidSchedule(fmt.Sprintf("due date %q must be in DD/MM/YYYY format", s))
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	if year < MinDueDateYear || year > MaxDueDateYear {
		return time.Time{}, invalidSchedule(fmt.Sprintf("due date year must be between %d and %d", MinDueDateYear, MaxDueDateYear))
	}
	if month < 1 || month > 12 {
		return time.Time{}, invalidSchedule(fmt.Sprintf("due date %q has an invalid month", s))
	}
	if day < 1 || day > daysIn(time.Month(month), year) {
		return time.Time{}, invalidSchedule(fmt.Sprintf("due date %q has an invalid day", s))
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// FormatDueDate renders a date as DD/MM/YYYY
func FormatDueDate(t time.Time) string {
	return t.Format(DueDateLayout)
}

// AutoFormatDateInput keeps up to eight digits of raw input and inserts
// the separators after the day and month, as a date field does while typing.
func AutoFormatDateInput(raw string) string {
	digits := make([]byte, 0, 8)
	for i := 0; i < len(raw) && len(digits) < 8; i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}

	var b strings.Builder
	for i, d := range digits {
		if i == 2 || i == 4 {
			b.WriteByte('/')
		}
		b.WriteByte(d)
	}
	return b.String()
}

// calendarDate drops the clock and location of t
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validCalendarYear(t time.Time) bool {
	y := t.Year()
	return y >= MinDueDateYear && y <= MaxDueDateYear
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
