package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeBodyTooLarge       = "BODY_TOO_LARGE"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

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

// Common domain errors. Messages are returned to API clients verbatim.
var (
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "404 Not Found")
	ErrCategoryRequired   = NewDomainError(ErrCodeMissingField, "category is required")
	ErrInvalidJSON        = NewDomainError(ErrCodeInvalidJSON, "Invalid JSON")
	ErrUnauthorised       = NewDomainError(ErrCodeUnauthorised, "unauthorised")
	ErrInvalidCredentials = NewDomainError(ErrCodeInvalidCredentials, "invalid credentials")
	ErrBodyTooLarge       = NewDomainError(ErrCodeBodyTooLarge, "request body too large")
)
