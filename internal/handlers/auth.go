package handlers

import (
	"errors"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/greenbasket/internal/apperrors"
	"github.com/example/greenbasket/internal/config"
	"github.com/example/greenbasket/internal/middleware"
	"github.com/example/greenbasket/internal/models"
	"github.com/example/greenbasket/internal/services"
	"github.com/example/greenbasket/internal/utils"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
	sms *services.SMSService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, sms *services.SMSService) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, sms: sms}
}

type requestCodeRequest struct {
	Phone string `json:"phone"`
}

// RequestCode sends a login code to the given phone number.
func (h *AuthHandler) RequestCode(c *fiber.Ctx) error {
	var req requestCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	if !phonePattern.MatchString(req.Phone) {
		return apperrors.ValidationFields("invalid phone number", map[string]string{"phone": "must be 10 digits"})
	}

	if err := h.sms.RequestCode(req.Phone); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "verification code sent",
	})
}

type verifyCodeRequest struct {
	Phone  string `json:"phone"`
	Code   string `json:"code"`
	Device string `json:"device"`
}

// VerifyCode validates a login code, creating the account on first login, and
// issues an access/refresh token pair.
func (h *AuthHandler) VerifyCode(c *fiber.Ctx) error {
	var req verifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	if !phonePattern.MatchString(req.Phone) || req.Code == "" {
		return apperrors.Validation("phone and code are required")
	}

	testLogin, err := h.sms.VerifyCode(req.Phone, req.Code)
	if err != nil {
		return err
	}

	var user models.User
	err = h.db.Where("phone = ?", req.Phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{Phone: req.Phone, Role: models.RoleCustomer}
		if err := h.db.Create(&user).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	accessToken, refreshToken, err := h.issueTokenPair(&user, req.Device)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user": fiber.Map{
				"id":                user.ID,
				"phone":             user.Phone,
				"name":              user.Name,
				"role":              user.Role,
				"profile_completed": user.ProfileCompleted,
			},
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"test_login":    testLogin,
		},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	Device       string `json:"device"`
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	userID, tokenID, err := utils.ParseRefreshToken(h.cfg.RefreshSecret, req.RefreshToken)
	if err != nil {
		return apperrors.Authentication("invalid refresh token")
	}

	var stored models.RefreshToken
	if err := h.db.First(&stored, "id = ? AND user_id = ?", tokenID, userID).Error; err != nil {
		return apperrors.Authentication("refresh token not recognized")
	}

	if stored.Revoked || stored.ExpiresAt.Before(time.Now()) || !utils.CheckToken(stored.TokenHash, req.RefreshToken) {
		return apperrors.Authentication("refresh token expired or revoked")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return apperrors.Authentication("account not found")
	}

	if err := h.db.Model(&stored).Update("revoked", true).Error; err != nil {
		return err
	}

	accessToken, refreshToken, err := h.issueTokenPair(&user, req.Device)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		},
	})
}

// Logout revokes the presented refresh token (one device).
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}

	userID, tokenID, err := utils.ParseRefreshToken(h.cfg.RefreshSecret, req.RefreshToken)
	if err != nil {
		return apperrors.Authentication("invalid refresh token")
	}

	if err := h.db.Model(&models.RefreshToken{}).
		Where("id = ? AND user_id = ?", tokenID, userID).
		Update("revoked", true).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "logged out"})
}

// LogoutAll revokes every refresh token of the authenticated user.
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return apperrors.Authentication("unauthorized")
	}

	if err := h.db.Model(&models.RefreshToken{}).
		Where("user_id = ?", userID).
		Update("revoked", true).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "logged out on all devices"})
}

func (h *AuthHandler) issueTokenPair(user *models.User, device string) (string, string, error) {
	accessToken, err := utils.GenerateAccessToken(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.AccessTokenTTL)
	if err != nil {
		return "", "", err
	}

	record := models.RefreshToken{
		UserID:    user.ID,
		Device:    device,
		ExpiresAt: time.Now().Add(h.cfg.RefreshTokenTTL),
	}
	if err := h.db.Create(&record).Error; err != nil {
		return "", "", err
	}

	refreshToken, err := utils.GenerateRefreshToken(h.cfg.RefreshSecret, user.ID, record.ID, h.cfg.RefreshTokenTTL)
	if err != nil {
		return "", "", err
	}

	hash, err := utils.HashToken(refreshToken)
	if err != nil {
		return "", "", err
	}
	if err := h.db.Model(&record).Update("token_hash", hash).Error; err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}
