package dto

import (
	"net/http"
	"strings"
)

// Error codes returned by the API. Domain errors keep their own code.

// General error codes
const (
	// ErrCodeInternal is used for infrastructure failures
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when the body cannot be decoded
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeUnauthorized is used when the store cannot be identified
	ErrCodeUnauthorized = "UNAUTHORIZED"
)

// Validation error codes
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeInvalidScheduleInput = "INVALID_SCHEDULE_INPUT"
	ErrCodeInvalidAmount        = "INVALID_AMOUNT"
)

// Resource error codes
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAccountDeleted      = "ACCOUNT_DELETED"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeDuplicateAccount    = "DUPLICATE_ACCOUNT"
	ErrCodeAlreadyProcessed    = "ALREADY_PROCESSED"
	ErrCodeConcurrencyConflict = "OPTIMISTIC_LOCK_FAILED"
)

// Business rule error codes
const (
	ErrCodeNonZeroBalance    = "NON_ZERO_BALANCE"
	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodeOutOfStock        = "OUT_OF_STOCK"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
)

// InternalErrorMessage is shown for every failure that is not a domain error
const InternalErrorMessage = "Erro inesperado. Tente novamente."

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeUnauthorized:    http.StatusUnauthorized,

	// The form itself is wrong -> 400, a well-formed but unusable value -> 422
	ErrCodeValidation:           http.StatusBadRequest,
	ErrCodeInvalidScheduleInput: http.StatusUnprocessableEntity,
	ErrCodeInvalidAmount:        http.StatusUnprocessableEntity,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAccountDeleted:      http.StatusConflict,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeDuplicateAccount:    http.StatusConflict,
	ErrCodeAlreadyProcessed:    http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeNonZeroBalance:      http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeOutOfStock:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unlisted INVALID_* codes are field-level validation failures (400);
// anything else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// errorCodeAliases folds older or generic codes into the codes clients handle
var errorCodeAliases = map[string]string{
	"INVALID_INPUT":        ErrCodeValidation,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"ALREADY_DELETED":      ErrCodeAccountDeleted,
	"INTERNAL":             ErrCodeInternal,
}

// NormalizeErrorCode converts an alias to its canonical code.
// Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if canonical, ok := errorCodeAliases[code]; ok {
		return canonical
	}
	return code
}
