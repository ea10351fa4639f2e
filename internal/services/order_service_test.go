package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/greenbasket/internal/models"
)

func TestRefundSettledStatus(t *testing.T) {
	assert.Equal(t, models.StatusRefunded, refundSettledStatus(models.StatusRefundInitiated))

	// Orders refunded straight from a cancellation or a delivered return
	// keep their shipping status; only the payment dimension settles.
	assert.Equal(t, models.StatusCancelled, refundSettledStatus(models.StatusCancelled))
	assert.Equal(t, models.StatusDelivered, refundSettledStatus(models.StatusDelivered))
}
