package services

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/example/greenbasket/internal/apperrors"
	"github.com/example/greenbasket/internal/models"
)

const (
	otpTTL         = 10 * time.Minute
	otpMaxAttempts = 5

	// testOTPCode pairs with the allow-listed numbers below when the bypass
	// is enabled. This is an authentication bypass: it must never be on in
	// production.
	testOTPCode = "1234"
)

var testPhones = map[string]bool{
	"9999999999": true,
	"8888888888": true,
}

// SMSService sends login codes through the SMS provider and verifies them.
type SMSService struct {
	db            *gorm.DB
	apiKey        string
	baseURL       string
	bypassEnabled bool
	client        *http.Client
}

// NewSMSService constructs the OTP adapter.
func NewSMSService(db *gorm.DB, apiKey, baseURL string, bypassEnabled bool) *SMSService {
	return &SMSService{
		db:            db,
		apiKey:        apiKey,
		baseURL:       baseURL,
		bypassEnabled: bypassEnabled,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

// IsTestPhone reports whether the phone skips the real provider entirely.
func (s *SMSService) IsTestPhone(phone string) bool {
	return s.bypassEnabled && testPhones[phone]
}

// RequestCode generates a code, stores it and sends it to the phone. Test
// numbers short-circuit before any record or provider call.
func (s *SMSService) RequestCode(phone string) error {
	if s.IsTestPhone(phone) {
		log.Printf("[OTP] test bypass active for %s, no code sent", phone)
		return nil
	}

	code, err := generateCode()
	if err != nil {
		return err
	}

	verification := models.OTPVerification{
		Phone:     phone,
		Code:      code,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := s.db.Create(&verification).Error; err != nil {
		return err
	}

	if err := s.send(phone, code); err != nil {
		return apperrors.Internal("failed to send verification code")
	}
	return nil
}

// VerifyCode checks a submitted code against the latest record for the phone.
// The returned flag is true when the login came through the test bypass.
func (s *SMSService) VerifyCode(phone, code string) (bool, error) {
	if s.IsTestPhone(phone) {
		if code != testOTPCode {
			return false, apperrors.Authentication("invalid verification code")
		}
		return true, nil
	}

	var verification models.OTPVerification
	err := s.db.Where("phone = ? AND consumed = false", phone).
		Order("created_at desc").
		First(&verification).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, apperrors.NotFound("verification code not found")
		}
		return false, err
	}

	if verification.ExpiresAt.Before(time.Now()) {
		return false, apperrors.Authentication("verification code expired")
	}

	if verification.Attempts >= otpMaxAttempts {
		return false, apperrors.Authentication("too many attempts, request a new code")
	}

	if verification.Code != code {
		s.db.Model(&verification).Update("attempts", gorm.Expr("attempts + 1"))
		return false, apperrors.Authentication("invalid verification code")
	}

	// Single use: a consumed record can never unlock a second login.
	if err := s.db.Model(&verification).Update("consumed", true).Error; err != nil {
		return false, err
	}
	return false, nil
}

func (s *SMSService) send(phone, code string) error {
	form := url.Values{}
	form.Set("route", "otp")
	form.Set("variables_values", code)
	form.Set("numbers", phone)

	req, err := http.NewRequest(http.MethodPost, s.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("authorization", s.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sms provider returned status %d", resp.StatusCode)
	}
	return nil
}

func generateCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
