// Package errors defines domain error values surfaced through the API.
package errors

// DomainError is an API-visible error with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string { return e.Message }

var (
	ErrPaymentNotFound = &DomainError{
		Code:    "PAYMENT_NOT_FOUND",
		Message: "payment not found",
	}
	ErrUnknownBundle = &DomainError{
		Code:    "UNKNOWN_BUNDLE",
		Message: "unknown bundle",
	}
	ErrUnknownMethod = &DomainError{
		Code:    "UNKNOWN_METHOD",
		Message: "unknown payment method",
	}
	ErrNotAdmin = &DomainError{
		Code:    "NOT_ADMIN",
		Message: "action restricted to the configured admin",
	}
	ErrProviderUnavailable = &DomainError{
		Code:    "PROVIDER_UNAVAILABLE",
		Message: "payment provider unavailable, try again later",
	}
	ErrNotVerified = &DomainError{
		Code:    "NOT_VERIFIED",
		Message: "payment is not verified",
	}
)
