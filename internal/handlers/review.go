package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/greenbasket/internal/apperrors"
	"github.com/example/greenbasket/internal/middleware"
	"github.com/example/greenbasket/internal/models"
	"github.com/example/greenbasket/internal/utils"
)

// ReviewHandler manages product reviews.
type ReviewHandler struct {
	db *gorm.DB
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{db: db}
}

// ListByProduct returns reviews for a product, newest first.
func (h *ReviewHandler) ListByProduct(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return apperrors.Validation("invalid product id")
	}

	pg := utils.ParsePagination(c)

	var total int64
	if err := h.db.Model(&models.Review{}).Where("product_id = ?", productID).Count(&total).Error; err != nil {
		return err
	}

	var reviews []models.Review
	if err := h.db.Preload("User").
		Where("product_id = ?", productID).Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&reviews).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    reviews,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type reviewRequest struct {
	ProductID string `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// CreateReview adds a review, one per user per product, and refreshes the
// product's rating aggregates.
func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return apperrors.ValidationFields("invalid rating", map[string]string{"rating": "must be between 1 and 5"})
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return apperrors.Validation("invalid product_id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("product not found")
		}
		return err
	}

	review := models.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.db.Create(&review).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateValue("you have already reviewed this product")
		}
		return err
	}

	if err := h.refreshAggregates(productID); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": review})
}

type updateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// UpdateReview edits the caller's own review.
func (h *ReviewHandler) UpdateReview(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	var req updateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return apperrors.ValidationFields("invalid rating", map[string]string{"rating": "must be between 1 and 5"})
	}

	var review models.Review
	if err := h.db.First(&review, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("review not found")
		}
		return err
	}

	review.Rating = req.Rating
	review.Comment = req.Comment
	if err := h.db.Save(&review).Error; err != nil {
		return err
	}

	if err := h.refreshAggregates(review.ProductID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": review})
}

// DeleteReview removes the caller's own review.
func (h *ReviewHandler) DeleteReview(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	var review models.Review
	if err := h.db.First(&review, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("review not found")
		}
		return err
	}

	if err := h.db.Delete(&review).Error; err != nil {
		return err
	}

	if err := h.refreshAggregates(review.ProductID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "review deleted"})
}

func (h *ReviewHandler) refreshAggregates(productID uuid.UUID) error {
	type aggregate struct {
		Avg   float64
		Count int
	}
	var agg aggregate
	if err := h.db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as count").
		Where("product_id = ?", productID).
		Scan(&agg).Error; err != nil {
		return err
	}

	return h.db.Model(&models.Product{}).Where("id = ?", productID).Updates(map[string]interface{}{
		"rating_average": agg.Avg,
		"rating_count":   agg.Count,
	}).Error
}
