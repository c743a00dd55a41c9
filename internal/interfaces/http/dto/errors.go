package dto

import "net/http"

// Error codes surfaced by the API. Domain errors carry these codes
// directly; the handler layer only maps them to HTTP status codes.
const (
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidationFailed = "VALIDATION_FAILED"

	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeBatchNotFound    = "BATCH_NOT_FOUND"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeRetailerNotFound = "RETAILER_NOT_FOUND"

	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeInvalidLine  = "INVALID_LINE"

	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeAlreadyDisposed     = "ALREADY_DISPOSED"
	ErrCodeConcurrencyConflict = "CONCURRENT_UPDATE_CONFLICT"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:         http.StatusInternalServerError,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeValidationFailed: http.StatusBadRequest,

	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeBatchNotFound:    http.StatusNotFound,
	ErrCodeProductNotFound:  http.StatusNotFound,
	ErrCodeRetailerNotFound: http.StatusNotFound,

	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidLine:  http.StatusBadRequest,

	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeAlreadyDisposed:     http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
