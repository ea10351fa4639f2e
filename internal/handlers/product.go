package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/example/greenbasket/internal/apperrors"
	"github.com/example/greenbasket/internal/cache"
	"github.com/example/greenbasket/internal/models"
	"github.com/example/greenbasket/internal/services"
	"github.com/example/greenbasket/internal/utils"
)

// ProductHandler manages product endpoints.
type ProductHandler struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB, cache *cache.Cache) *ProductHandler {
	return &ProductHandler{db: db, cache: cache}
}

// productView decorates a product with per-variant availability evaluated at
// request time.
type productView struct {
	models.Product
	Available bool `json:"available"`
}

// ListProducts returns a filtered, sorted, paginated product page.
// Filters: category (slug), search, ready_to_eat, active (admin use).
// Sorts: newest (default), name, price_asc, price_desc.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	category := c.Query("category")
	search := c.Query("search")
	readyToEat := c.Query("ready_to_eat")
	sortKey := c.Query("sort", "newest")

	cacheKey := fmt.Sprintf("products:list:%s:%s:%s:%s:%d:%d", category, search, readyToEat, sortKey, pg.Page, pg.Limit)
	if cached, ok := h.cache.Get(cacheKey); ok {
		return c.JSON(cached)
	}

	query := h.db.Model(&models.Product{}).Where("is_active = true")

	if category != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", category)
	}
	if search != "" {
		query = query.Where("products.name ILIKE ?", "%"+search+"%")
	}
	if readyToEat == "true" {
		query = query.Where("products.is_ready_to_eat = true")
	}

	switch sortKey {
	case "name":
		query = query.Order("products.name asc")
	case "price_asc":
		query = query.Order("(SELECT MIN(selling_price) FROM product_variants WHERE product_variants.product_id = products.id) asc")
	case "price_desc":
		query = query.Order("(SELECT MIN(selling_price) FROM product_variants WHERE product_variants.product_id = products.id) desc")
	default:
		query = query.Order("products.created_at desc")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Preload("Variants").Preload("Category").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&products).Error; err != nil {
		return err
	}

	now := time.Now()
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, productView{Product: p, Available: anyVariantAvailable(&p, now)})
	}

	response := fiber.Map{
		"success": true,
		"data":    views,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	}
	h.cache.Set(cacheKey, response)
	return c.JSON(response)
}

// GetProduct returns a single product by ID or slug.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	param := c.Params("id")

	query := h.db.Preload("Variants").Preload("Category")
	var product models.Product
	var err error
	if id, parseErr := uuid.Parse(param); parseErr == nil {
		err = query.First(&product, "id = ?", id).Error
	} else {
		err = query.First(&product, "slug = ?", param).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    productView{Product: product, Available: anyVariantAvailable(&product, time.Now())},
	})
}

type variantRequest struct {
	QuantityLabel   string  `json:"quantity_label"`
	Unit            string  `json:"unit"`
	BasePrice       float64 `json:"base_price"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountFlat    float64 `json:"discount_flat"`
	Stock           int     `json:"stock"`
}

type productRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CategoryID  string           `json:"category_id"`
	Images      []string         `json:"images"`
	IsActive    *bool            `json:"is_active"`
	ReadyToEat  bool             `json:"is_ready_to_eat"`
	ExpiryHours int              `json:"expiry_hours"`
	Variants    []variantRequest `json:"variants"`
}

// CreateProduct persists a product with its variants. Ready-to-eat products
// start their freshness window now.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := validateProductRequest(&req, true); err != nil {
		return err
	}

	product := models.Product{
		Name:         req.Name,
		Slug:         utils.Slugify(req.Name),
		Description:  req.Description,
		Images:       req.Images,
		IsActive:     true,
		IsReadyToEat: req.ReadyToEat,
		ExpiryHours:  req.ExpiryHours,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.ReadyToEat {
		now := time.Now()
		product.ActivatedAt = &now
	}
	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return apperrors.Validation("invalid category_id")
		}
		product.CategoryID = &id
	}

	for _, v := range req.Variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			QuantityLabel:   v.QuantityLabel,
			Unit:            v.Unit,
			BasePrice:       v.BasePrice,
			DiscountPercent: v.DiscountPercent,
			DiscountFlat:    v.DiscountFlat,
			SellingPrice:    services.SellingPrice(v.BasePrice, v.DiscountPercent, v.DiscountFlat),
			Stock:           v.Stock,
		})
	}

	if err := h.db.Create(&product).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateValue("a product with this name already exists")
		}
		return err
	}

	h.cache.DeletePrefix("products:")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct updates product fields. Toggling a ready-to-eat product back
// to active restarts its freshness window.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
		updates["slug"] = utils.Slugify(req.Name)
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if len(req.Images) > 0 {
		updates["images"] = pq.StringArray(req.Images)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.ExpiryHours > 0 {
		updates["expiry_hours"] = req.ExpiryHours
	}
	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return apperrors.Validation("invalid category_id")
		}
		updates["category_id"] = categoryID
	}
	if len(updates) == 0 {
		return apperrors.Validation("no fields to update")
	}

	if err := h.db.Model(&product).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateValue("a product with this name already exists")
		}
		return err
	}

	h.cache.DeletePrefix("products:")
	return c.JSON(fiber.Map{"success": true, "data": product})
}

// ActivateFreshness restarts the freshness window of a ready-to-eat product.
func (h *ProductHandler) ActivateFreshness(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("product not found")
		}
		return err
	}
	if !product.IsReadyToEat {
		return apperrors.Validation("product is not ready-to-eat")
	}

	now := time.Now()
	if err := h.db.Model(&product).Update("activated_at", now).Error; err != nil {
		return err
	}

	h.cache.DeletePrefix("products:")
	return c.JSON(fiber.Map{"success": true, "data": product})
}

// UpdateVariant edits one variant, recomputing the selling price.
func (h *ProductHandler) UpdateVariant(c *fiber.Ctx) error {
	variantID, err := uuid.Parse(c.Params("variantId"))
	if err != nil {
		return apperrors.Validation("invalid variant id")
	}

	var variant models.ProductVariant
	if err := h.db.First(&variant, "id = ?", variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("variant not found")
		}
		return err
	}

	var req variantRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if req.BasePrice < 0 || req.DiscountPercent < 0 || req.DiscountFlat < 0 || req.Stock < 0 {
		return apperrors.Validation("prices, discounts and stock must not be negative")
	}

	variant.QuantityLabel = req.QuantityLabel
	variant.Unit = req.Unit
	variant.BasePrice = req.BasePrice
	variant.DiscountPercent = req.DiscountPercent
	variant.DiscountFlat = req.DiscountFlat
	variant.Stock = req.Stock
	variant.SellingPrice = services.SellingPrice(req.BasePrice, req.DiscountPercent, req.DiscountFlat)

	if err := h.db.Save(&variant).Error; err != nil {
		return err
	}

	h.cache.DeletePrefix("products:")
	return c.JSON(fiber.Map{"success": true, "data": variant})
}

// DeleteProduct deactivates a product rather than removing it, so placed
// orders keep valid references.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperrors.Validation("invalid id")
	}

	if err := h.db.Model(&models.Product{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
		return err
	}

	h.cache.DeletePrefix("products:")
	return c.JSON(fiber.Map{"success": true, "message": "product deactivated"})
}

func validateProductRequest(req *productRequest, creating bool) error {
	fields := map[string]string{}
	if req.Name == "" {
		fields["name"] = "required"
	}
	if creating && len(req.Variants) == 0 {
		fields["variants"] = "at least one variant is required"
	}
	for _, v := range req.Variants {
		if v.BasePrice < 0 || v.DiscountPercent < 0 || v.DiscountFlat < 0 || v.Stock < 0 {
			fields["variants"] = "prices, discounts and stock must not be negative"
		}
	}
	if req.ReadyToEat && req.ExpiryHours <= 0 {
		fields["expiry_hours"] = "required for ready-to-eat products"
	}
	if len(fields) > 0 {
		return apperrors.ValidationFields("invalid product payload", fields)
	}
	return nil
}

func anyVariantAvailable(product *models.Product, now time.Time) bool {
	for i := range product.Variants {
		if services.VariantAvailable(product, &product.Variants[i], now) {
			return true
		}
	}
	return false
}
