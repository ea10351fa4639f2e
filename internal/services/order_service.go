package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/greenbasket/internal/apperrors"
	"github.com/example/greenbasket/internal/models"
)

// OrderService owns checkout and the order status lifecycle.
type OrderService struct {
	db           *gorm.DB
	gateway      *RazorpayService
	telegram     *TelegramService
	currency     string
	defaultRules DeliveryRules
}

// NewOrderService constructs OrderService.
func NewOrderService(db *gorm.DB, gateway *RazorpayService, telegram *TelegramService, currency string, rules DeliveryRules) *OrderService {
	return &OrderService{
		db:           db,
		gateway:      gateway,
		telegram:     telegram,
		currency:     currency,
		defaultRules: rules,
	}
}

// Rules returns the live delivery pricing knobs.
func (s *OrderService) Rules() DeliveryRules {
	return LoadDeliveryRules(s.db, s.defaultRules)
}

// LoadDeliveryRules reads the StoreSettings row, falling back to the config
// defaults when the row is absent.
func LoadDeliveryRules(db *gorm.DB, fallback DeliveryRules) DeliveryRules {
	var settings models.StoreSettings
	if err := db.First(&settings).Error; err != nil {
		return fallback
	}
	return DeliveryRules{
		FreeDeliveryThreshold: settings.FreeDeliveryThreshold,
		DeliveryCharge:        settings.DeliveryCharge,
	}
}

// Checkout turns the user's cart into an order. Cart lines are copied, stock
// is decremented per variant with a conditional update so two simultaneous
// checkouts can never drive stock below zero, and the cart is cleared only
// after the order row exists. Any failed line aborts the whole creation.
func (s *OrderService) Checkout(userID, addressID uuid.UUID, paymentMethod string) (*models.Order, error) {
	if paymentMethod != models.PaymentMethodCOD && paymentMethod != models.PaymentMethodOnline {
		return nil, apperrors.Validation("payment_method must be cod or online")
	}

	var cart models.Cart
	err := s.db.Preload("Items").Preload("Items.Product").Preload("Items.Variant").
		Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Validation("cart is empty")
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.Validation("cart is empty")
	}

	var address models.Address
	if err := s.db.First(&address, "id = ? AND user_id = ?", addressID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("delivery address not found")
		}
		return nil, err
	}

	var settings models.StoreSettings
	if err := s.db.First(&settings).Error; err == nil {
		if !settings.StoreOpen {
			return nil, apperrors.Validation("store is currently closed")
		}
		if paymentMethod == models.PaymentMethodCOD && !settings.CODEnabled {
			return nil, apperrors.Validation("cash on delivery is currently disabled")
		}
	}

	now := time.Now()
	order := models.Order{
		OrderNumber:   generateOrderNumber(),
		UserID:        userID,
		PaymentMethod: paymentMethod,
		PaymentStatus: models.PaymentPending,
		CouponCode:    cart.CouponCode,
		PlacedAt:      now,
		AddressLine:   address.AddressLine,
		Landmark:      address.Landmark,
		City:          address.City,
		Pincode:       address.Pincode,
	}

	for _, item := range cart.Items {
		if item.Product == nil || item.Variant == nil {
			return nil, apperrors.StockUnavailable("a cart item no longer exists in the catalog")
		}
		if !VariantAvailable(item.Product, item.Variant, now) {
			return nil, apperrors.StockUnavailable(fmt.Sprintf("%s is no longer available", item.Product.Name))
		}

		unitPrice := SellingPrice(item.Variant.BasePrice, item.Variant.DiscountPercent, item.Variant.DiscountFlat)
		productID := item.ProductID
		variantID := item.VariantID
		order.Items = append(order.Items, models.OrderItem{
			ProductID:     &productID,
			VariantID:     &variantID,
			ProductName:   item.Product.Name,
			QuantityLabel: item.Variant.QuantityLabel,
			Unit:          item.Variant.Unit,
			Quantity:      item.Quantity,
			UnitPrice:     unitPrice,
			LineTotal:     unitPrice * float64(item.Quantity),
		})
	}

	var coupon *models.Coupon
	if cart.CouponCode != "" {
		var c models.Coupon
		if err := s.db.Where("code = ?", cart.CouponCode).First(&c).Error; err == nil {
			coupon = &c
		}
	}

	items := make([]models.CartItem, len(order.Items))
	for i, line := range order.Items {
		items[i] = models.CartItem{Quantity: line.Quantity, UnitPrice: line.UnitPrice}
	}
	totals := ComputeCartTotals(items, coupon, s.Rules(), now)
	order.Subtotal = totals.Subtotal
	order.Discount = totals.Discount
	order.DeliveryCharge = totals.DeliveryCharge
	order.Total = totals.Total

	if paymentMethod == models.PaymentMethodOnline {
		order.Status = models.StatusPaymentPending
	} else {
		order.Status = models.StatusPlaced
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i, item := range cart.Items {
			// Conditional decrement: only succeeds while enough stock
			// remains, which is what keeps the last unit from being
			// sold twice.
			res := tx.Model(&models.ProductVariant{}).
				Where("id = ? AND stock >= ?", item.VariantID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.InsufficientStock(fmt.Sprintf("not enough stock for %s", order.Items[i].ProductName))
			}
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// The intent is registered only after every stock line is secured,
		// so an insufficient-stock abort never strands an intent at the
		// gateway.
		if paymentMethod == models.PaymentMethodOnline {
			intentID, err := s.gateway.CreateIntent(order.Total, s.currency, order.OrderNumber)
			if err != nil {
				return apperrors.Internal("failed to create payment with the gateway")
			}
			order.GatewayOrderID = intentID
			if err := tx.Model(&order).Update("gateway_order_id", intentID).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    order.Status,
			ActorRole: ActorSystem,
			Note:      "order created",
		}).Error; err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Model(&cart).Update("coupon_code", "").Error
	})
	if err != nil {
		return nil, err
	}

	if paymentMethod == models.PaymentMethodCOD {
		go s.notifyNewOrder(order)
	}

	return &order, nil
}

// Transition moves an order to a requested status on behalf of an actor role.
// The edge must be legal and permitted for the role. When the move requires a
// refund (online, already paid, entering a cancelled or refund state) the
// gateway call happens inside the same transaction: if it fails, the status
// does not change.
func (s *OrderService) Transition(orderID uuid.UUID, requested, actorRole, note string) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, err
	}

	if err := ValidateTransition(order.Status, requested, actorRole); err != nil {
		return nil, err
	}
	if err := ValidateRefundEligibility(&order, requested); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": requested}

	if requested == models.StatusDelivered && order.PaymentMethod == models.PaymentMethodCOD {
		updates["payment_status"] = models.PaymentPaid
	}
	if requested == models.StatusRefunded {
		updates["payment_status"] = models.PaymentRefunded
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if RefundRequired(&order, requested) {
			refundID, err := s.gateway.InitiateRefund(order.PaymentID, order.Total)
			if err != nil {
				return apperrors.Internal("refund could not be initiated, order status unchanged")
			}
			updates["refund_id"] = refundID
			updates["payment_status"] = models.PaymentRefundInitiated
		}

		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    requested,
			ActorRole: actorRole,
			Note:      note,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ConfirmPayment handles the client-returned payment reference after an
// online checkout. A signature mismatch fails closed: the order stays
// provisional and nothing is recorded.
func (s *OrderService) ConfirmPayment(orderID uuid.UUID, paymentID, signature string) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("order not found")
		}
		return nil, err
	}

	if !s.gateway.VerifyClientSignature(order.GatewayOrderID, paymentID, signature) {
		return nil, apperrors.PaymentVerification("payment signature verification failed")
	}

	return s.markPaid(&order, paymentID)
}

// HandlePaymentCaptured is the webhook path to the same confirmation. The
// caller has already verified the webhook signature over the raw body.
func (s *OrderService) HandlePaymentCaptured(gatewayOrderID, paymentID string) error {
	var order models.Order
	if err := s.db.First(&order, "gateway_order_id = ?", gatewayOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("order not found for gateway reference")
		}
		return err
	}

	_, err := s.markPaid(&order, paymentID)
	return err
}

// HandleRefundProcessed finalizes a refund the gateway reports as settled.
func (s *OrderService) HandleRefundProcessed(paymentID string) error {
	var order models.Order
	if err := s.db.First(&order, "payment_id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("order not found for payment reference")
		}
		return err
	}

	if order.PaymentStatus == models.PaymentRefunded {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		resulting := refundSettledStatus(order.Status)
		updates := map[string]interface{}{"payment_status": models.PaymentRefunded}
		if resulting != order.Status {
			updates["status"] = resulting
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    resulting,
			ActorRole: ActorSystem,
			Note:      "refund settled by gateway",
		}).Error
	})
}

// refundSettledStatus returns the status an order lands in once the gateway
// reports its refund settled. Only an order waiting in REFUND_INITIATED moves;
// cancelled and delivered orders keep their shipping status, and the history
// row records whatever the order actually ends up in.
func refundSettledStatus(current string) string {
	if current == models.StatusRefundInitiated {
		return models.StatusRefunded
	}
	return current
}

func (s *OrderService) markPaid(order *models.Order, paymentID string) (*models.Order, error) {
	// Replayed webhooks and a client verify racing each other both land
	// here; a second confirmation is a no-op.
	if order.Status != models.StatusPaymentPending {
		return order, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(order).Updates(map[string]interface{}{
			"status":         models.StatusPlaced,
			"payment_status": models.PaymentPaid,
			"payment_id":     paymentID,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    models.StatusPlaced,
			ActorRole: ActorSystem,
			Note:      "online payment verified",
		}).Error
	})
	if err != nil {
		return nil, err
	}

	go s.notifyNewOrder(*order)
	if s.telegram != nil {
		go func(number string, total float64) {
			if err := s.telegram.NotifyPaymentReceived(number, total, s.currency); err != nil {
				log.Printf("[Order] payment notification failed: %v", err)
			}
		}(order.OrderNumber, order.Total)
	}

	return order, nil
}

func (s *OrderService) notifyNewOrder(order models.Order) {
	if s.telegram == nil {
		return
	}

	var user models.User
	_ = s.db.First(&user, "id = ?", order.UserID).Error

	var items []models.OrderItem
	_ = s.db.Where("order_id = ?", order.ID).Find(&items).Error

	lines := make([]OrderItemNotification, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderItemNotification{
			Name:          item.ProductName,
			QuantityLabel: item.QuantityLabel,
			Quantity:      item.Quantity,
			Price:         item.UnitPrice,
		})
	}

	notification := OrderNotification{
		OrderNumber:   order.OrderNumber,
		Items:         lines,
		Total:         order.Total,
		Currency:      s.currency,
		CustomerName:  user.Name,
		CustomerPhone: user.Phone,
		PaymentMethod: order.PaymentMethod,
		Address:       fmt.Sprintf("%s, %s %s", order.AddressLine, order.City, order.Pincode),
	}

	if err := s.telegram.NotifyNewOrder(notification); err != nil {
		log.Printf("[Order] telegram notification failed for %s: %v", order.OrderNumber, err)
	}
}

func generateOrderNumber() string {
	return fmt.Sprintf("GB-%d", time.Now().UnixNano()%1000000000)
}
