package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/greenbasket/internal/apperrors"
	"github.com/example/greenbasket/internal/config"
	"github.com/example/greenbasket/internal/middleware"
	"github.com/example/greenbasket/internal/models"
	"github.com/example/greenbasket/internal/services"
)

// CartHandler manages the per-user cart. Totals are recomputed on every
// request; nothing monetary is trusted from storage.
type CartHandler struct {
	db           *gorm.DB
	defaultRules services.DeliveryRules
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB, cfg *config.Config) *CartHandler {
	return &CartHandler{
		db: db,
		defaultRules: services.DeliveryRules{
			FreeDeliveryThreshold: cfg.FreeDeliveryThreshold,
			DeliveryCharge:        cfg.DeliveryCharge,
		},
	}
}

// GetCart returns the cart with freshly computed totals.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}

	cart, err := h.getOrCreateCart(userID)
	if err != nil {
		return err
	}

	return h.respondWithCart(c, cart)
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// AddItem puts a variant in the cart, merging with an existing line. The
// requested quantity is validated against the variant's stock and the
// product's availability at this moment, not at the time the line was first
// added.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}

	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if req.Quantity <= 0 {
		return apperrors.ValidationFields("quantity must be positive", map[string]string{"quantity": "must be >= 1"})
	}

	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		return apperrors.Validation("invalid variant_id")
	}

	product, variant, err := h.loadVariant(variantID)
	if err != nil {
		return err
	}

	cart, err := h.getOrCreateCart(userID)
	if err != nil {
		return err
	}

	quantity := req.Quantity
	var existing models.CartItem
	err = h.db.Where("cart_id = ? AND variant_id = ?", cart.ID, variantID).First(&existing).Error
	if err == nil {
		quantity += existing.Quantity
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := checkPurchasable(product, variant, quantity); err != nil {
		return err
	}

	unitPrice := services.SellingPrice(variant.BasePrice, variant.DiscountPercent, variant.DiscountFlat)
	if existing.ID != uuid.Nil {
		err = h.db.Model(&existing).Updates(map[string]interface{}{
			"quantity":   quantity,
			"unit_price": unitPrice,
		}).Error
	} else {
		err = h.db.Create(&models.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			VariantID: variant.ID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
		}).Error
	}
	if err != nil {
		return err
	}

	return h.respondWithCart(c, cart)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem changes a line's quantity, revalidating against live stock.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}

	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return apperrors.Validation("invalid item id")
	}

	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if req.Quantity <= 0 {
		return apperrors.Validation("quantity must be positive; use remove to drop the line")
	}

	cart, err := h.getOrCreateCart(userID)
	if err != nil {
		return err
	}

	var item models.CartItem
	if err := h.db.First(&item, "id = ? AND cart_id = ?", itemID, cart.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("cart item not found")
		}
		return err
	}

	product, variant, err := h.loadVariant(item.VariantID)
	if err != nil {
		return err
	}
	if err := checkPurchasable(product, variant, req.Quantity); err != nil {
		return err
	}

	unitPrice := services.SellingPrice(variant.BasePrice, variant.DiscountPercent, variant.DiscountFlat)
	if err := h.db.Model(&item).Updates(map[string]interface{}{
		"quantity":   req.Quantity,
		"unit_price": unitPrice,
	}).Error; err != nil {
		return err
	}

	return h.respondWithCart(c, cart)
}

// RemoveItem drops a line from the cart.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}

	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return apperrors.Validation("invalid item id")
	}

	cart, err := h.getOrCreateCart(userID)
	if err != nil {
		return err
	}

	if err := h.db.Delete(&models.CartItem{}, "id = ? AND cart_id = ?", itemID, cart.ID).Error; err != nil {
		return err
	}

	return h.respondWithCart(c, cart)
}

// ClearCart removes all lines and the coupon.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}

	cart, err := h.getOrCreateCart(userID)
	if err != nil {
		return err
	}

	if err := h.db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	if err := h.db.Model(cart).Update("coupon_code", "").Error; err != nil {
		return err
	}

	return h.respondWithCart(c, cart)
}

type couponRequest struct {
	Code string `json:"code"`
}

// ApplyCoupon attaches a coupon code to the cart. The discount itself is
// recomputed on every read, never stored.
func (h *CartHandler) ApplyCoupon(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}

	var req couponRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if req.Code == "" {
		return apperrors.Validation("coupon code is required")
	}

	var coupon models.Coupon
	if err := h.db.Where("code = ?", req.Code).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("coupon not found")
		}
		return err
	}

	now := time.Now()
	if !coupon.IsActive || (coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt)) {
		return apperrors.Validation("coupon is no longer valid")
	}

	cart, err := h.getOrCreateCart(userID)
	if err != nil {
		return err
	}

	if err := h.db.Model(cart).Update("coupon_code", coupon.Code).Error; err != nil {
		return err
	}
	cart.CouponCode = coupon.Code

	return h.respondWithCart(c, cart)
}

// RemoveCoupon detaches the coupon from the cart.
func (h *CartHandler) RemoveCoupon(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}

	cart, err := h.getOrCreateCart(userID)
	if err != nil {
		return err
	}

	if err := h.db.Model(cart).Update("coupon_code", "").Error; err != nil {
		return err
	}
	cart.CouponCode = ""

	return h.respondWithCart(c, cart)
}

func (h *CartHandler) getOrCreateCart(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := h.db.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := h.db.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (h *CartHandler) respondWithCart(c *fiber.Ctx, cart *models.Cart) error {
	var items []models.CartItem
	if err := h.db.Preload("Product").Preload("Variant").
		Where("cart_id = ?", cart.ID).Order("created_at asc").
		Find(&items).Error; err != nil {
		return err
	}

	var coupon *models.Coupon
	if cart.CouponCode != "" {
		var stored models.Coupon
		if err := h.db.Where("code = ?", cart.CouponCode).First(&stored).Error; err == nil {
			coupon = &stored
		}
	}

	now := time.Now()
	rules := services.LoadDeliveryRules(h.db, h.defaultRules)
	totals := services.ComputeCartTotals(items, coupon, rules, now)

	type cartLine struct {
		models.CartItem
		Available bool `json:"available"`
	}
	lines := make([]cartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, cartLine{
			CartItem:  item,
			Available: services.VariantAvailable(item.Product, item.Variant, now) && item.Variant != nil && item.Quantity <= item.Variant.Stock,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":          cart.ID,
			"coupon_code": cart.CouponCode,
			"items":       lines,
			"totals":      totals,
		},
	})
}

// checkPurchasable validates a requested quantity against the variant's
// current stock and the product's availability flags. Items already in carts
// are never auto-removed; stale lines simply fail this check on the next
// mutation or checkout.
func checkPurchasable(product *models.Product, variant *models.ProductVariant, quantity int) error {
	if !services.VariantAvailable(product, variant, time.Now()) {
		return apperrors.StockUnavailable(fmt.Sprintf("%s is currently unavailable", product.Name))
	}
	if quantity > variant.Stock {
		return apperrors.StockUnavailable(fmt.Sprintf("only %d of %s left in stock", variant.Stock, product.Name))
	}
	return nil
}

func (h *CartHandler) loadVariant(variantID uuid.UUID) (*models.Product, *models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := h.db.First(&variant, "id = ?", variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NotFound("product variant not found")
		}
		return nil, nil, err
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", variant.ProductID).Error; err != nil {
		return nil, nil, err
	}
	return &product, &variant, nil
}
