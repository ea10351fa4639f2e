package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/greenbasket/internal/apperrors"
	"github.com/example/greenbasket/internal/models"
)

var allStatuses = []string{
	models.StatusPaymentPending,
	models.StatusPlaced,
	models.StatusConfirmed,
	models.StatusPacked,
	models.StatusReadyToDeliver,
	models.StatusHandedToAgent,
	models.StatusDelivered,
	models.StatusCancelled,
	models.StatusRefundInitiated,
	models.StatusRefunded,
}

var allActors = []string{
	models.RoleCustomer,
	models.RoleStaff,
	models.RoleAdmin,
	models.RoleVendor,
	ActorSystem,
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr), "expected an operational error, got %v", err)
	return appErr.Code
}

func TestValidateTransitionHappyPath(t *testing.T) {
	tests := []struct {
		from string
		to   string
		role string
	}{
		{models.StatusPaymentPending, models.StatusPlaced, ActorSystem},
		{models.StatusPlaced, models.StatusConfirmed, models.RoleAdmin},
		{models.StatusConfirmed, models.StatusPacked, models.RoleStaff},
		{models.StatusPacked, models.StatusReadyToDeliver, models.RoleStaff},
		{models.StatusReadyToDeliver, models.StatusHandedToAgent, models.RoleStaff},
		{models.StatusHandedToAgent, models.StatusDelivered, models.RoleStaff},
		{models.StatusPlaced, models.StatusCancelled, models.RoleCustomer},
		{models.StatusConfirmed, models.StatusCancelled, models.RoleAdmin},
		{models.StatusPacked, models.StatusCancelled, models.RoleAdmin},
		{models.StatusCancelled, models.StatusRefundInitiated, models.RoleAdmin},
		{models.StatusDelivered, models.StatusRefundInitiated, ActorSystem},
		{models.StatusRefundInitiated, models.StatusRefunded, ActorSystem},
	}

	for _, tc := range tests {
		assert.NoError(t, ValidateTransition(tc.from, tc.to, tc.role), "%s -> %s as %s", tc.from, tc.to, tc.role)
	}
}

func TestValidateTransitionRejectsIllegalEdges(t *testing.T) {
	// Every (from, to) pair outside the status graph is rejected no matter
	// who asks.
	for _, from := range allStatuses {
		legal := map[string]bool{}
		for _, to := range allowedNext[from] {
			legal[to] = true
		}

		for _, to := range allStatuses {
			if legal[to] || to == from {
				continue
			}
			for _, role := range allActors {
				err := ValidateTransition(from, to, role)
				require.Error(t, err, "%s -> %s as %s must fail", from, to, role)
				assert.Equal(t, apperrors.CodeInvalidTransition, errCode(t, err))
			}
		}
	}
}

func TestValidateTransitionSelfEdgeIsIllegal(t *testing.T) {
	for _, status := range allStatuses {
		err := ValidateTransition(status, status, models.RoleAdmin)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidTransition, errCode(t, err))
	}
}

func TestValidateTransitionRoleGating(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		role string
	}{
		{"customer cannot confirm", models.StatusPlaced, models.StatusConfirmed, models.RoleCustomer},
		{"staff cannot confirm", models.StatusPlaced, models.StatusConfirmed, models.RoleStaff},
		{"staff cannot cancel a placed order", models.StatusPlaced, models.StatusCancelled, models.RoleStaff},
		{"customer cannot cancel after confirmation", models.StatusConfirmed, models.StatusCancelled, models.RoleCustomer},
		{"customer cannot pack", models.StatusConfirmed, models.StatusPacked, models.RoleCustomer},
		{"vendor cannot pack", models.StatusConfirmed, models.StatusPacked, models.RoleVendor},
		{"staff cannot initiate refunds", models.StatusCancelled, models.StatusRefundInitiated, models.RoleStaff},
		{"customer cannot finish refunds", models.StatusRefundInitiated, models.StatusRefunded, models.RoleCustomer},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTransition(tc.from, tc.to, tc.role)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeForbidden, errCode(t, err))
		})
	}
}

func TestEveryEdgeHasRoles(t *testing.T) {
	for from, nexts := range allowedNext {
		for _, to := range nexts {
			roles := edgeRoles[statusEdge{from, to}]
			assert.NotEmpty(t, roles, "edge %s -> %s has no permitted roles", from, to)
		}
	}
}

func TestRefundStatesRequireOnlinePayment(t *testing.T) {
	// A cash order passes the graph and role checks for the refund edges,
	// so the eligibility guard is what keeps it from ever being marked
	// refunded.
	cod := &models.Order{PaymentMethod: models.PaymentMethodCOD, PaymentStatus: models.PaymentPaid}
	for _, to := range []string{models.StatusRefundInitiated, models.StatusRefunded} {
		err := ValidateRefundEligibility(cod, to)
		require.Error(t, err, "cod order must not enter %s", to)
		assert.Equal(t, apperrors.CodeInvalidTransition, errCode(t, err))
	}

	unpaid := &models.Order{PaymentMethod: models.PaymentMethodOnline, PaymentStatus: models.PaymentPending}
	err := ValidateRefundEligibility(unpaid, models.StatusRefundInitiated)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidTransition, errCode(t, err))

	paid := &models.Order{PaymentMethod: models.PaymentMethodOnline, PaymentStatus: models.PaymentPaid}
	assert.NoError(t, ValidateRefundEligibility(paid, models.StatusRefundInitiated))

	initiated := &models.Order{PaymentMethod: models.PaymentMethodOnline, PaymentStatus: models.PaymentRefundInitiated}
	assert.NoError(t, ValidateRefundEligibility(initiated, models.StatusRefunded))

	// Non-refund targets are outside this guard's scope.
	assert.NoError(t, ValidateRefundEligibility(cod, models.StatusCancelled))
}

func TestRefundRequired(t *testing.T) {
	paidOnline := &models.Order{PaymentMethod: models.PaymentMethodOnline, PaymentStatus: models.PaymentPaid}
	assert.True(t, RefundRequired(paidOnline, models.StatusCancelled))
	assert.True(t, RefundRequired(paidOnline, models.StatusRefundInitiated))
	assert.False(t, RefundRequired(paidOnline, models.StatusConfirmed))

	cod := &models.Order{PaymentMethod: models.PaymentMethodCOD, PaymentStatus: models.PaymentPaid}
	assert.False(t, RefundRequired(cod, models.StatusCancelled))

	unpaid := &models.Order{PaymentMethod: models.PaymentMethodOnline, PaymentStatus: models.PaymentPending}
	assert.False(t, RefundRequired(unpaid, models.StatusCancelled))
}

func TestTerminalShipping(t *testing.T) {
	assert.True(t, TerminalShipping(models.StatusDelivered))
	assert.True(t, TerminalShipping(models.StatusCancelled))
	assert.False(t, TerminalShipping(models.StatusPlaced))
	assert.False(t, TerminalShipping(models.StatusHandedToAgent))
}
