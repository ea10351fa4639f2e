package handlers

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/greenbasket/internal/apperrors"
	"github.com/example/greenbasket/internal/services"
)

// WebhookHandler processes gateway callbacks. The HMAC over the raw body has
// already been verified by the route middleware.
type WebhookHandler struct {
	orders *services.OrderService
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(orders *services.OrderService) *WebhookHandler {
	return &WebhookHandler{orders: orders}
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
		Refund struct {
			Entity struct {
				ID        string `json:"id"`
				PaymentID string `json:"payment_id"`
			} `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

// HandleRazorpay dispatches a verified webhook event.
func (h *WebhookHandler) HandleRazorpay(c *fiber.Ctx) error {
	var event webhookEvent
	if err := json.Unmarshal(c.Body(), &event); err != nil {
		return apperrors.Validation("malformed webhook payload")
	}

	switch event.Event {
	case "payment.captured":
		entity := event.Payload.Payment.Entity
		if entity.OrderID == "" || entity.ID == "" {
			return apperrors.Validation("webhook payment entity incomplete")
		}
		if err := h.orders.HandlePaymentCaptured(entity.OrderID, entity.ID); err != nil {
			return err
		}
	case "refund.processed":
		entity := event.Payload.Refund.Entity
		if entity.PaymentID == "" {
			return apperrors.Validation("webhook refund entity incomplete")
		}
		if err := h.orders.HandleRefundProcessed(entity.PaymentID); err != nil {
			return err
		}
	default:
		// Unknown events are acknowledged so the gateway stops retrying.
		log.Printf("[Webhook] ignoring event %s", event.Event)
	}

	return c.JSON(fiber.Map{"success": true})
}
