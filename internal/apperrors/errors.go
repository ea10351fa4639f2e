package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned in the response envelope.
const (
	CodeValidation          = "VALIDATION"
	CodeAuthentication      = "AUTHENTICATION"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeStockUnavailable    = "STOCK_UNAVAILABLE"
	CodeDuplicateValue      = "DUPLICATE_VALUE"
	CodePaymentVerification = "PAYMENT_VERIFICATION"
	CodeInternal            = "INTERNAL"
)

// Error is an operational error: anticipated, carrying a message that is safe
// to return to the caller. Anything that is not an *Error is collapsed to a
// generic internal error by the HTTP error handler.
type Error struct {
	Code    string
	Status  int
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is lets errors.Is match on the code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Status: fiber.StatusBadRequest, Message: message}
}

// ValidationFields reports field-level validation detail.
func ValidationFields(message string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Status: fiber.StatusBadRequest, Message: message, Fields: fields}
}

func Authentication(message string) *Error {
	return &Error{Code: CodeAuthentication, Status: fiber.StatusUnauthorized, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Status: fiber.StatusForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Status: fiber.StatusNotFound, Message: message}
}

func InvalidTransition(message string) *Error {
	return &Error{Code: CodeInvalidTransition, Status: fiber.StatusConflict, Message: message}
}

func InsufficientStock(message string) *Error {
	return &Error{Code: CodeInsufficientStock, Status: fiber.StatusConflict, Message: message}
}

func StockUnavailable(message string) *Error {
	return &Error{Code: CodeStockUnavailable, Status: fiber.StatusConflict, Message: message}
}

func DuplicateValue(message string) *Error {
	return &Error{Code: CodeDuplicateValue, Status: fiber.StatusConflict, Message: message}
}

func PaymentVerification(message string) *Error {
	return &Error{Code: CodePaymentVerification, Status: fiber.StatusBadRequest, Message: message}
}

func Internal(message string) *Error {
	return &Error{Code: CodeInternal, Status: fiber.StatusInternalServerError, Message: message}
}
