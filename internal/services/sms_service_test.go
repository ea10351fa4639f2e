package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/greenbasket/internal/apperrors"
)

func TestIsTestPhone(t *testing.T) {
	enabled := NewSMSService(nil, "key", "https://sms.example", true)
	assert.True(t, enabled.IsTestPhone("9999999999"))
	assert.True(t, enabled.IsTestPhone("8888888888"))
	assert.False(t, enabled.IsTestPhone("7777777777"))

	disabled := NewSMSService(nil, "key", "https://sms.example", false)
	assert.False(t, disabled.IsTestPhone("9999999999"))
	assert.False(t, disabled.IsTestPhone("8888888888"))
}

func TestVerifyCodeTestBypass(t *testing.T) {
	svc := NewSMSService(nil, "key", "https://sms.example", true)

	testLogin, err := svc.VerifyCode("9999999999", "1234")
	require.NoError(t, err)
	assert.True(t, testLogin)

	_, err = svc.VerifyCode("9999999999", "0000")
	require.Error(t, err)
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeAuthentication, appErr.Code)
}

func TestRequestCodeTestBypassSkipsProvider(t *testing.T) {
	// db and provider are nil on purpose: a test phone must never reach
	// either of them.
	svc := NewSMSService(nil, "", "", true)
	assert.NoError(t, svc.RequestCode("8888888888"))
}
