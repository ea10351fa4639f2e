package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

// RazorpayService talks to the payment gateway. Amounts cross this boundary
// in minor currency units (paise) while the rest of the system works in major
// units; ToMinorUnits/FromMinorUnits are the only conversion points.
type RazorpayService struct {
	keyID         string
	keySecret     string
	webhookSecret string
	baseURL       string
	client        *http.Client
}

// NewRazorpayService constructs the gateway adapter.
func NewRazorpayService(keyID, keySecret, webhookSecret string) *RazorpayService {
	return &RazorpayService{
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		baseURL:       razorpayBaseURL,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

// ToMinorUnits converts a major-unit amount to integer minor units, rounding
// to the nearest paisa.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts integer minor units back to a major-unit amount.
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}

type gatewayOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type gatewayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateIntent registers a payment intent with the gateway and returns its id.
func (s *RazorpayService) CreateIntent(amount float64, currency, receipt string) (string, error) {
	payload := map[string]interface{}{
		"amount":   ToMinorUnits(amount),
		"currency": currency,
		"receipt":  receipt,
	}

	var result gatewayOrderResponse
	if err := s.post("/orders", payload, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

// InitiateRefund asks the gateway to refund a captured payment and returns
// the refund reference.
func (s *RazorpayService) InitiateRefund(paymentID string, amount float64) (string, error) {
	payload := map[string]interface{}{
		"amount": ToMinorUnits(amount),
	}

	var result gatewayOrderResponse
	if err := s.post(fmt.Sprintf("/payments/%s/refund", paymentID), payload, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

// VerifyClientSignature checks the HMAC a client returns after completing a
// checkout: SHA-256 over "<gatewayOrderID>|<paymentID>" keyed with the key
// secret. Comparison is constant time.
func (s *RazorpayService) VerifyClientSignature(gatewayOrderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the HMAC the gateway puts on server-to-server
// webhook calls: SHA-256 over the raw request body keyed with the webhook
// secret.
func (s *RazorpayService) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *RazorpayService) post(path string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.keyID, s.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("payment gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var gatewayErr gatewayErrorResponse
		if err := json.Unmarshal(data, &gatewayErr); err == nil && gatewayErr.Error.Description != "" {
			return fmt.Errorf("payment gateway error %s: %s", gatewayErr.Error.Code, gatewayErr.Error.Description)
		}
		return fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	return json.Unmarshal(data, result)
}
