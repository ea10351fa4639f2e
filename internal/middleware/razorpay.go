package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/greenbasket/internal/apperrors"
	"github.com/example/greenbasket/internal/services"
)

// RazorpayWebhookAuth authenticates webhook calls by their HMAC header alone;
// no session token is involved. A bad or missing signature never reaches the
// handler, so an unauthenticated payload cannot mutate any order.
func RazorpayWebhookAuth(gateway *services.RazorpayService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		signature := c.Get("X-Razorpay-Signature")
		if signature == "" {
			return apperrors.PaymentVerification("missing webhook signature")
		}

		if !gateway.VerifyWebhookSignature(c.Body(), signature) {
			return apperrors.PaymentVerification("webhook signature verification failed")
		}

		return c.Next()
	}
}
