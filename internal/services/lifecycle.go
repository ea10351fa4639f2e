package services

import (
	"fmt"

	"github.com/example/greenbasket/internal/apperrors"
	"github.com/example/greenbasket/internal/models"
)

// ActorSystem is the pseudo-role used by internal flows (payment verification,
// webhooks) when they drive a transition on behalf of the platform.
const ActorSystem = "system"

type statusEdge struct {
	from string
	to   string
}

// allowedNext is the order status graph. A transition is legal only if it
// appears here, regardless of who requests it.
var allowedNext = map[string][]string{
	models.StatusPaymentPending:  {models.StatusPlaced, models.StatusCancelled},
	models.StatusPlaced:          {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed:       {models.StatusPacked, models.StatusCancelled},
	models.StatusPacked:          {models.StatusReadyToDeliver, models.StatusCancelled},
	models.StatusReadyToDeliver:  {models.StatusHandedToAgent},
	models.StatusHandedToAgent:   {models.StatusDelivered},
	models.StatusDelivered:       {models.StatusRefundInitiated},
	models.StatusCancelled:       {models.StatusRefundInitiated},
	models.StatusRefundInitiated: {models.StatusRefunded},
}

// edgeRoles lists which actor roles may drive each legal edge. Front-line
// staff move orders through the packing and delivery chain; confirmation,
// cancellation and refunds belong to admin and internal flows; customers hold
// exactly the pre-confirmation cancel.
var edgeRoles = map[statusEdge][]string{
	{models.StatusPaymentPending, models.StatusPlaced}:        {ActorSystem, models.RoleAdmin},
	{models.StatusPaymentPending, models.StatusCancelled}:     {ActorSystem, models.RoleAdmin},
	{models.StatusPlaced, models.StatusConfirmed}:             {ActorSystem, models.RoleAdmin},
	{models.StatusPlaced, models.StatusCancelled}:             {ActorSystem, models.RoleAdmin, models.RoleCustomer},
	{models.StatusConfirmed, models.StatusPacked}:             {models.RoleAdmin, models.RoleStaff},
	{models.StatusConfirmed, models.StatusCancelled}:          {ActorSystem, models.RoleAdmin},
	{models.StatusPacked, models.StatusReadyToDeliver}:        {models.RoleAdmin, models.RoleStaff},
	{models.StatusPacked, models.StatusCancelled}:             {ActorSystem, models.RoleAdmin},
	{models.StatusReadyToDeliver, models.StatusHandedToAgent}: {models.RoleAdmin, models.RoleStaff},
	{models.StatusHandedToAgent, models.StatusDelivered}:      {models.RoleAdmin, models.RoleStaff},
	{models.StatusDelivered, models.StatusRefundInitiated}:    {ActorSystem, models.RoleAdmin},
	{models.StatusCancelled, models.StatusRefundInitiated}:    {ActorSystem, models.RoleAdmin},
	{models.StatusRefundInitiated, models.StatusRefunded}:     {ActorSystem, models.RoleAdmin},
}

// ValidateTransition checks that moving an order from one status to another is
// both legal in the status graph and permitted for the acting role.
func ValidateTransition(from, to, actorRole string) error {
	next, known := allowedNext[from]
	if !known {
		return apperrors.InvalidTransition(fmt.Sprintf("no transitions allowed from status %s", from))
	}

	legal := false
	for _, s := range next {
		if s == to {
			legal = true
			break
		}
	}
	if !legal {
		return apperrors.InvalidTransition(fmt.Sprintf("cannot move order from %s to %s", from, to))
	}

	for _, role := range edgeRoles[statusEdge{from, to}] {
		if role == actorRole {
			return nil
		}
	}
	return apperrors.Forbidden(fmt.Sprintf("role %s may not move order from %s to %s", actorRole, from, to))
}

// ValidateRefundEligibility rejects moving an order into a refund state unless
// it carries a captured online payment. COD orders and unpaid online orders
// have nothing to refund.
func ValidateRefundEligibility(order *models.Order, to string) error {
	if to != models.StatusRefundInitiated && to != models.StatusRefunded {
		return nil
	}
	if order.PaymentMethod != models.PaymentMethodOnline {
		return apperrors.InvalidTransition("only online payments can be refunded")
	}
	if order.PaymentStatus != models.PaymentPaid && order.PaymentStatus != models.PaymentRefundInitiated {
		return apperrors.InvalidTransition("order has no captured payment to refund")
	}
	return nil
}

// RefundRequired reports whether flipping an order to the given status must
// first push a refund through the payment gateway: the order was paid online
// and is entering a cancelled or refund state.
func RefundRequired(order *models.Order, to string) bool {
	if order.PaymentMethod != models.PaymentMethodOnline || order.PaymentStatus != models.PaymentPaid {
		return false
	}
	return to == models.StatusCancelled || to == models.StatusRefundInitiated
}

// TerminalShipping reports whether a status ends the shipping dimension of an
// order's life.
func TerminalShipping(status string) bool {
	return status == models.StatusDelivered || status == models.StatusCancelled
}
