package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/greenbasket/internal/apperrors"
	"github.com/example/greenbasket/internal/middleware"
	"github.com/example/greenbasket/internal/models"
	"github.com/example/greenbasket/internal/services"
	"github.com/example/greenbasket/internal/utils"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	db     *gorm.DB
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, orders *services.OrderService) *OrderHandler {
	return &OrderHandler{db: db, orders: orders}
}

type createOrderRequest struct {
	AddressID     string `json:"address_id"`
	PaymentMethod string `json:"payment_method"`
}

// CreateOrder places an order from the current cart snapshot.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	addressID, err := uuid.Parse(req.AddressID)
	if err != nil {
		return apperrors.ValidationFields("invalid address_id", map[string]string{"address_id": "must be a valid id"})
	}

	order, err := h.orders.Checkout(userID, addressID, req.PaymentMethod)
	if err != nil {
		return err
	}

	data := fiber.Map{
		"id":             order.ID,
		"order_number":   order.OrderNumber,
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
		"total":          order.Total,
		"placed_at":      order.PlacedAt,
	}
	if order.PaymentMethod == models.PaymentMethodOnline {
		data["gateway_order_id"] = order.GatewayOrderID
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

// ListMyOrders returns the authenticated user's orders.
func (h *OrderHandler) ListMyOrders(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{}).Where("user_id = ?", userID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order. Customers only see their own; staff and
// admin see any.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}
	role, _ := middleware.CurrentRole(c)

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	query := h.db.Preload("Items").Preload("History", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc")
	})
	if role != models.RoleAdmin && role != models.RoleStaff {
		query = query.Where("user_id = ?", userID)
	}

	var order models.Order
	if err := query.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// ListAllOrders returns every order, filterable by status. Staff and admin.
func (h *OrderHandler) ListAllOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("User").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// UpdateStatus drives a status transition as the acting role. Illegal edges
// and under-privileged roles are rejected by the lifecycle table.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	role, ok := middleware.CurrentRole(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if req.Status == "" {
		return apperrors.Validation("status is required")
	}

	order, err := h.orders.Transition(id, req.Status, role, req.Note)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// CancelOrder lets the owning customer cancel an order that is still PLACED.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("order not found")
		}
		return err
	}

	updated, err := h.orders.Transition(order.ID, models.StatusCancelled, models.RoleCustomer, "cancelled by customer")
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": updated})
}

type verifyPaymentRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// VerifyPayment confirms an online payment from the client-returned
// reference. A bad signature leaves the order provisional.
func (h *OrderHandler) VerifyPayment(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}

	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return apperrors.Validation("invalid order_id")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ? AND user_id = ?", orderID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("order not found")
		}
		return err
	}

	updated, err := h.orders.ConfirmPayment(orderID, req.PaymentID, req.Signature)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "payment verified",
		"data": fiber.Map{
			"id":             updated.ID,
			"status":         updated.Status,
			"payment_status": updated.PaymentStatus,
		},
	})
}
