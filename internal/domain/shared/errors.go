package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidLine         = NewDomainError("INVALID_LINE", "Sale line is invalid")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrBatchNotFound       = NewDomainError("BATCH_NOT_FOUND", "Stock batch not found")
	ErrAlreadyDisposed     = NewDomainError("ALREADY_DISPOSED", "Stock batch is already disposed")
	ErrProductNotFound     = NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	ErrRetailerNotFound    = NewDomainError("RETAILER_NOT_FOUND", "Retailer not found")
	ErrConcurrencyConflict = NewDomainError("CONCURRENT_UPDATE_CONFLICT", "Stock was modified by another transaction")
)
