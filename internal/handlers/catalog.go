package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/greenbasket/internal/apperrors"
	"github.com/example/greenbasket/internal/cache"
	"github.com/example/greenbasket/internal/models"
	"github.com/example/greenbasket/internal/utils"
)

// CatalogHandler manages category resources.
type CatalogHandler struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB, cache *cache.Cache) *CatalogHandler {
	return &CatalogHandler{db: db, cache: cache}
}

// ListCategories returns all categories. The list is cached until the next
// category mutation.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	if cached, ok := h.cache.Get("categories:list"); ok {
		return c.JSON(fiber.Map{"success": true, "data": cached, "cached": true})
	}

	var categories []models.Category
	if err := h.db.Order("name asc").Find(&categories).Error; err != nil {
		return err
	}

	h.cache.Set("categories:list", categories)
	return c.JSON(fiber.Map{"success": true, "data": categories})
}

// GetCategory returns a single category by ID or slug.
func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	param := c.Params("id")

	var category models.Category
	var err error
	if id, parseErr := uuid.Parse(param); parseErr == nil {
		err = h.db.First(&category, "id = ?", id).Error
	} else {
		err = h.db.First(&category, "slug = ?", param).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("category not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": category})
}

type categoryRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// CreateCategory persists a new category with a derived slug.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if req.Name == "" {
		return apperrors.ValidationFields("name is required", map[string]string{"name": "required"})
	}

	category := models.Category{
		Name:  req.Name,
		Slug:  utils.Slugify(req.Name),
		Image: req.Image,
	}
	if err := h.db.Create(&category).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateValue("a category with this name already exists")
		}
		return err
	}

	h.cache.DeletePrefix("categories:")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": category})
}

// UpdateCategory updates name and image, re-deriving the slug on rename.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("category not found")
		}
		return err
	}

	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
		updates["slug"] = utils.Slugify(req.Name)
	}
	if req.Image != "" {
		updates["image"] = req.Image
	}
	if len(updates) == 0 {
		return apperrors.Validation("no fields to update")
	}

	if err := h.db.Model(&category).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateValue("a category with this name already exists")
		}
		return err
	}

	h.cache.DeletePrefix("categories:")
	h.cache.DeletePrefix("products:")
	return c.JSON(fiber.Map{"success": true, "data": category})
}

// DeleteCategory removes a category; its products keep a nil category.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	if err := h.db.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
		return err
	}

	h.cache.DeletePrefix("categories:")
	h.cache.DeletePrefix("products:")
	return c.JSON(fiber.Map{"success": true, "message": "category deleted"})
}
