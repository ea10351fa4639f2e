package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/greenbasket/internal/apperrors"
	"github.com/example/greenbasket/internal/models"
)

func assertStockUnavailable(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeStockUnavailable, appErr.Code)
}

func TestCheckPurchasableStockBoundary(t *testing.T) {
	product := &models.Product{Name: "Organic Bananas", IsActive: true}
	variant := &models.ProductVariant{Stock: 3}

	// Exactly the remaining stock is allowed; one more is not. The same
	// gate sees the merged quantity when a line is added twice.
	assert.NoError(t, checkPurchasable(product, variant, 3))
	assertStockUnavailable(t, checkPurchasable(product, variant, 4))
}

func TestCheckPurchasableLastUnit(t *testing.T) {
	product := &models.Product{Name: "A2 Cow Milk", IsActive: true}
	variant := &models.ProductVariant{Stock: 1}

	assert.NoError(t, checkPurchasable(product, variant, 1))
	assertStockUnavailable(t, checkPurchasable(product, variant, 2))
}

func TestCheckPurchasableUnavailableProduct(t *testing.T) {
	inactive := &models.Product{Name: "Cold Pressed Juice", IsActive: false}
	assertStockUnavailable(t, checkPurchasable(inactive, &models.ProductVariant{Stock: 5}, 1))

	outOfStock := &models.Product{Name: "Fresh Spinach", IsActive: true}
	assertStockUnavailable(t, checkPurchasable(outOfStock, &models.ProductVariant{Stock: 0}, 1))
}
