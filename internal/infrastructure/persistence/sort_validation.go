package persistence

import (
	"strings"
)

// ValidateSortOrder normalises the direction to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CreditAccountSortFields contains allowed sort fields for credit accounts
var CreditAccountSortFields = map[string]bool{
	"created_at":    true,
	"updated_at":    true,
	"customer_name": true,
	"total_debt":    true,
}

// CashFlowSortFields contains allowed sort fields for cash-flow entries
var CashFlowSortFields = map[string]bool{
	"date":       true,
	"amount":     true,
	"created_at": true,
}
