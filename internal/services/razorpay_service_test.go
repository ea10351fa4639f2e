package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signHex(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{0, 0},
		{1, 100},
		{499, 49900},
		{0.3, 30},
		{123.45, 12345},
		{40.4, 4040},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ToMinorUnits(tc.amount), "amount %v", tc.amount)
	}
}

func TestFromMinorUnitsRoundTrip(t *testing.T) {
	for _, minor := range []int64{0, 1, 99, 100, 49900, 123456789} {
		assert.Equal(t, minor, ToMinorUnits(FromMinorUnits(minor)))
	}
}

func TestVerifyClientSignature(t *testing.T) {
	svc := NewRazorpayService("key_id", "key_secret", "webhook_secret")

	valid := signHex("key_secret", []byte("order_abc|pay_xyz"))
	assert.True(t, svc.VerifyClientSignature("order_abc", "pay_xyz", valid))

	assert.False(t, svc.VerifyClientSignature("order_abc", "pay_xyz", "deadbeef"))
	assert.False(t, svc.VerifyClientSignature("order_abc", "pay_other", valid))
	assert.False(t, svc.VerifyClientSignature("order_abc", "pay_xyz", ""))

	// Signed with the wrong secret.
	wrongKey := signHex("webhook_secret", []byte("order_abc|pay_xyz"))
	assert.False(t, svc.VerifyClientSignature("order_abc", "pay_xyz", wrongKey))
}

func TestVerifyWebhookSignature(t *testing.T) {
	svc := NewRazorpayService("key_id", "key_secret", "webhook_secret")
	body := []byte(`{"event":"payment.captured","payload":{}}`)

	valid := signHex("webhook_secret", body)
	assert.True(t, svc.VerifyWebhookSignature(body, valid))

	assert.False(t, svc.VerifyWebhookSignature([]byte(`{"event":"tampered"}`), valid))
	assert.False(t, svc.VerifyWebhookSignature(body, signHex("key_secret", body)))
	assert.False(t, svc.VerifyWebhookSignature(body, ""))
}
