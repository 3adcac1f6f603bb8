package credit

import "github.com/crediario/backend/internal/domain/shared"

// Credit ledger errors
var (
	ErrInvalidScheduleInput = shared.NewDomainError("INVALID_SCHEDULE_INPUT", "Invalid installment schedule input")
	ErrInvalidAmount        = shared.NewDomainError("INVALID_AMOUNT", "Amount must be greater than zero")
	ErrDuplicateAccount     = shared.NewDomainError("DUPLICATE_ACCOUNT", "Customer already has a credit account")
	ErrNonZeroBalance       = shared.NewDomainError("NON_ZERO_BALANCE", "Credit account has outstanding debt")
	ErrAccountDeleted       = shared.NewDomainError("ACCOUNT_DELETED", "Credit account was deleted")
)

func invalidSchedule(message string) *shared.DomainError {
	return shared.NewDomainError(ErrInvalidScheduleInput.Code, message)
}
