package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crmhub/models"
)

func TestGenerateOTPCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := generateOTPCode()
		assert.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9', "code %q contains non-digit", code)
		}
	}
}

func TestOTPUsable(t *testing.T) {
	now := time.Now()
	fresh := &models.OTP{
		Code:      "482913",
		ExpiresAt: now.Add(otpLifetime),
		CreatedAt: now,
	}

	assert.True(t, otpUsable(fresh, "482913", now))
	assert.False(t, otpUsable(fresh, "000000", now), "wrong code")
	assert.False(t, otpUsable(nil, "482913", now), "no pending code")

	used := *fresh
	used.Used = true
	assert.False(t, otpUsable(&used, "482913", now), "already consumed")

	expired := *fresh
	expired.ExpiresAt = now.Add(-time.Second)
	assert.False(t, otpUsable(&expired, "482913", now), "past TTL")
}

func TestOTPOnCooldown(t *testing.T) {
	now := time.Now()

	recent := &models.OTP{CreatedAt: now.Add(-30 * time.Second)}
	assert.True(t, otpOnCooldown(recent, now))

	old := &models.OTP{CreatedAt: now.Add(-90 * time.Second)}
	assert.False(t, otpOnCooldown(old, now))

	assert.False(t, otpOnCooldown(nil, now))
}
