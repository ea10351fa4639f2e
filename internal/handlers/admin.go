package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/greenbasket/internal/apperrors"
	"github.com/example/greenbasket/internal/models"
	"github.com/example/greenbasket/internal/services"
)

const lowStockThreshold = 5

// AdminHandler serves the back-office dashboard and store management.
type AdminHandler struct {
	db    *gorm.DB
	media *services.CloudinaryService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, media *services.CloudinaryService) *AdminHandler {
	return &AdminHandler{db: db, media: media}
}

// Dashboard returns the headline numbers for the admin home screen.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	var userCount, productCount, orderCount, pendingOrders int64
	if err := h.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if err := h.db.Model(&models.Product{}).Count(&productCount).Error; err != nil {
		return err
	}
	if err := h.db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		return err
	}
	if err := h.db.Model(&models.Order{}).
		Where("status IN ?", []string{models.StatusPlaced, models.StatusConfirmed, models.StatusPacked}).
		Count(&pendingOrders).Error; err != nil {
		return err
	}

	var revenue float64
	if err := h.db.Model(&models.Order{}).
		Where("payment_status = ?", models.PaymentPaid).
		Select("COALESCE(SUM(total), 0)").Scan(&revenue).Error; err != nil {
		return err
	}

	monthStart := time.Now().AddDate(0, 0, -30)
	var monthRevenue float64
	if err := h.db.Model(&models.Order{}).
		Where("payment_status = ? AND placed_at >= ?", models.PaymentPaid, monthStart).
		Select("COALESCE(SUM(total), 0)").Scan(&monthRevenue).Error; err != nil {
		return err
	}

	var recentOrders []models.Order
	if err := h.db.Preload("Items").Order("placed_at desc").Limit(5).Find(&recentOrders).Error; err != nil {
		return err
	}

	var lowStock []models.ProductVariant
	if err := h.db.Where("stock < ?", lowStockThreshold).
		Order("stock asc").Limit(20).Find(&lowStock).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"users":           userCount,
			"products":        productCount,
			"orders":          orderCount,
			"pending_orders":  pendingOrders,
			"revenue":         revenue,
			"revenue_30_days": monthRevenue,
			"recent_orders":   recentOrders,
			"low_stock":       lowStock,
		},
	})
}

// GetSettings returns the store settings singleton, creating it from defaults
// on first read.
func (h *AdminHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.loadSettings()
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": settings})
}

type settingsRequest struct {
	FreeDeliveryThreshold *float64 `json:"free_delivery_threshold"`
	DeliveryCharge        *float64 `json:"delivery_charge"`
	CODEnabled            *bool    `json:"cod_enabled"`
	StoreOpen             *bool    `json:"store_open"`
	SupportPhone          *string  `json:"support_phone"`
}

// UpdateSettings edits the store settings singleton.
func (h *AdminHandler) UpdateSettings(c *fiber.Ctx) error {
	var req settingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	settings, err := h.loadSettings()
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if req.FreeDeliveryThreshold != nil {
		if *req.FreeDeliveryThreshold < 0 {
			return apperrors.Validation("free_delivery_threshold must not be negative")
		}
		updates["free_delivery_threshold"] = *req.FreeDeliveryThreshold
	}
	if req.DeliveryCharge != nil {
		if *req.DeliveryCharge < 0 {
			return apperrors.Validation("delivery_charge must not be negative")
		}
		updates["delivery_charge"] = *req.DeliveryCharge
	}
	if req.CODEnabled != nil {
		updates["cod_enabled"] = *req.CODEnabled
	}
	if req.StoreOpen != nil {
		updates["store_open"] = *req.StoreOpen
	}
	if req.SupportPhone != nil {
		updates["support_phone"] = *req.SupportPhone
	}
	if len(updates) == 0 {
		return apperrors.Validation("no fields to update")
	}

	if err := h.db.Model(settings).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": settings})
}

// ListCoupons returns all coupons.
func (h *AdminHandler) ListCoupons(c *fiber.Ctx) error {
	var coupons []models.Coupon
	if err := h.db.Order("created_at desc").Find(&coupons).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": coupons})
}

type couponPayload struct {
	Code            string     `json:"code"`
	DiscountPercent float64    `json:"discount_percent"`
	DiscountFlat    float64    `json:"discount_flat"`
	MaxDiscount     float64    `json:"max_discount"`
	MinSubtotal     float64    `json:"min_subtotal"`
	IsActive        *bool      `json:"is_active"`
	ExpiresAt       *time.Time `json:"expires_at"`
}

// CreateCoupon adds a coupon.
func (h *AdminHandler) CreateCoupon(c *fiber.Ctx) error {
	var req couponPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if req.Code == "" {
		return apperrors.ValidationFields("code is required", map[string]string{"code": "required"})
	}
	if req.DiscountPercent < 0 || req.DiscountPercent > 100 || req.DiscountFlat < 0 {
		return apperrors.Validation("discount values out of range")
	}

	coupon := models.Coupon{
		Code:            req.Code,
		DiscountPercent: req.DiscountPercent,
		DiscountFlat:    req.DiscountFlat,
		MaxDiscount:     req.MaxDiscount,
		MinSubtotal:     req.MinSubtotal,
		IsActive:        true,
		ExpiresAt:       req.ExpiresAt,
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}

	if err := h.db.Create(&coupon).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateValue("a coupon with this code already exists")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": coupon})
}

// UpdateCoupon edits a coupon.
func (h *AdminHandler) UpdateCoupon(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	var coupon models.Coupon
	if err := h.db.First(&coupon, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("coupon not found")
		}
		return err
	}

	var req couponUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	updates, err := couponUpdates(&req)
	if err != nil {
		return err
	}

	if err := h.db.Model(&coupon).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": coupon})
}

type couponUpdateRequest struct {
	DiscountPercent *float64   `json:"discount_percent"`
	DiscountFlat    *float64   `json:"discount_flat"`
	MaxDiscount     *float64   `json:"max_discount"`
	MinSubtotal     *float64   `json:"min_subtotal"`
	IsActive        *bool      `json:"is_active"`
	ExpiresAt       *time.Time `json:"expires_at"`
}

// couponUpdates builds the column map from a partial update. Pointer fields
// distinguish "omitted" from "set to zero", so any monetary knob can be reset.
func couponUpdates(req *couponUpdateRequest) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if req.DiscountPercent != nil {
		if *req.DiscountPercent < 0 || *req.DiscountPercent > 100 {
			return nil, apperrors.Validation("discount_percent must be between 0 and 100")
		}
		updates["discount_percent"] = *req.DiscountPercent
	}
	if req.DiscountFlat != nil {
		if *req.DiscountFlat < 0 {
			return nil, apperrors.Validation("discount_flat must not be negative")
		}
		updates["discount_flat"] = *req.DiscountFlat
	}
	if req.MaxDiscount != nil {
		if *req.MaxDiscount < 0 {
			return nil, apperrors.Validation("max_discount must not be negative")
		}
		updates["max_discount"] = *req.MaxDiscount
	}
	if req.MinSubtotal != nil {
		if *req.MinSubtotal < 0 {
			return nil, apperrors.Validation("min_subtotal must not be negative")
		}
		updates["min_subtotal"] = *req.MinSubtotal
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.ExpiresAt != nil {
		updates["expires_at"] = *req.ExpiresAt
	}
	if len(updates) == 0 {
		return nil, apperrors.Validation("no fields to update")
	}
	return updates, nil
}

// DeleteCoupon removes a coupon. Orders keep their recorded discount.
func (h *AdminHandler) DeleteCoupon(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	if err := h.db.Delete(&models.Coupon{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "coupon deleted"})
}

// UploadImage sends an image to the asset host and returns its URL.
func (h *AdminHandler) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return apperrors.Validation("image file is required")
	}

	folder := c.FormValue("folder", "products")
	url, err := h.media.Upload(file, folder)
	if err != nil {
		return apperrors.Internal("image upload failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": fiber.Map{"url": url}})
}

type deleteImageRequest struct {
	URL string `json:"url"`
}

// DeleteImage removes an asset by its stored URL.
func (h *AdminHandler) DeleteImage(c *fiber.Ctx) error {
	var req deleteImageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	publicID := services.PublicIDFromURL(req.URL)
	if publicID == "" {
		return apperrors.Validation("url does not look like a hosted asset")
	}

	if err := h.media.Delete(publicID); err != nil {
		return apperrors.Internal("image delete failed")
	}

	return c.JSON(fiber.Map{"success": true, "message": "image deleted"})
}

type roleRequest struct {
	Role string `json:"role"`
}

// UpdateUserRole assigns staff, vendor, admin or customer to a user.
func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	switch req.Role {
	case models.RoleCustomer, models.RoleStaff, models.RoleAdmin, models.RoleVendor:
	default:
		return apperrors.ValidationFields("invalid role", map[string]string{"role": "must be customer, staff, admin or vendor"})
	}

	res := h.db.Model(&models.User{}).Where("id = ?", id).Update("role", req.Role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "role updated"})
}

func (h *AdminHandler) loadSettings() (*models.StoreSettings, error) {
	var settings models.StoreSettings
	err := h.db.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.StoreSettings{
			FreeDeliveryThreshold: 499,
			DeliveryCharge:        40,
			CODEnabled:            true,
			StoreOpen:             true,
		}
		if err := h.db.Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}
