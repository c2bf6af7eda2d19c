package booking

import "fmt"

// Error codes for the booking and payment engine.
const (
	CodeValidation   = "validationError"
	CodeConflict     = "availabilityConflict"
	CodeAuthRequired = "authenticationRequired"
	CodeNotFound     = "notFound"
	CodeUnauthorized = "unauthorized"
	CodeProvider     = "providerError"
)

// ServiceError is the typed error surfaced by the booking and payment
// services; handlers map its Code to an HTTP status.
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(msg string) error {
	return &ServiceError{Code: CodeValidation, Message: msg}
}

func NewConflictError(msg string) error {
	return &ServiceError{Code: CodeConflict, Message: msg}
}

func NewAuthRequiredError(msg string) error {
	return &ServiceError{Code: CodeAuthRequired, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &ServiceError{Code: CodeNotFound, Message: msg}
}

func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: CodeUnauthorized, Message: msg}
}

func NewProviderError(msg string) error {
	return &ServiceError{Code: CodeProvider, Message: msg}
}

// CodeOf extracts the service error code, or "" for untyped errors.
func CodeOf(err error) string {
	if se, ok := err.(*ServiceError); ok {
		return se.Code
	}
	return ""
}
