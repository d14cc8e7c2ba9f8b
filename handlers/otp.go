// handlers/otp.go
package handlers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"crmhub/models"
)

const (
	otpLifetime       = 10 * time.Minute
	otpResendCooldown = 60 * time.Second
)

// generateOTPCode returns a 6-digit zero-padded code.
func generateOTPCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failing means the process has bigger problems
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// otpUsable reports whether a stored code can still be consumed with the
// submitted value. All rejection reasons collapse into one answer so the
// caller cannot leak which check failed.
func otpUsable(otp *models.OTP, submitted string, now time.Time) bool {
	if otp == nil {
		return false
	}
	if otp.Used {
		return false
	}
	if now.After(otp.ExpiresAt) {
		return false
	}
	return otp.Code == submitted
}

// otpOnCooldown reports whether a new code for the same email would violate
// the resend throttle.
func otpOnCooldown(existing *models.OTP, now time.Time) bool {
	if existing == nil {
		return false
	}
	return now.Sub(existing.CreatedAt) < otpResendCooldown
}
