package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestErrorsIsMatchesOnCode(t *testing.T) {
	err := fmt.Errorf("loading cart: %w", NotFound("cart not found"))

	assert.True(t, errors.Is(err, NotFound("")))
	assert.False(t, errors.Is(err, Validation("")))
}

func TestConstructorsSetStatus(t *testing.T) {
	tests := []struct {
		err    *Error
		code   string
		status int
	}{
		{Validation("bad"), CodeValidation, fiber.StatusBadRequest},
		{Authentication("no"), CodeAuthentication, fiber.StatusUnauthorized},
		{Forbidden("no"), CodeForbidden, fiber.StatusForbidden},
		{NotFound("gone"), CodeNotFound, fiber.StatusNotFound},
		{InvalidTransition("nope"), CodeInvalidTransition, fiber.StatusConflict},
		{InsufficientStock("out"), CodeInsufficientStock, fiber.StatusConflict},
		{StockUnavailable("out"), CodeStockUnavailable, fiber.StatusConflict},
		{DuplicateValue("dup"), CodeDuplicateValue, fiber.StatusConflict},
		{PaymentVerification("bad sig"), CodePaymentVerification, fiber.StatusBadRequest},
		{Internal("boom"), CodeInternal, fiber.StatusInternalServerError},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.code, tc.err.Code)
		assert.Equal(t, tc.status, tc.err.Status)
	}
}

func TestValidationFieldsCarriesDetail(t *testing.T) {
	err := ValidationFields("invalid input", map[string]string{"phone": "must be 10 digits"})
	assert.Equal(t, "must be 10 digits", err.Fields["phone"])
	assert.Contains(t, err.Error(), "invalid input")
}
