package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"darisni/config"

	"github.com/go-redis/redis/v8"
)

const otpLength = 6

// ErrPasscodeMismatch marks a wrong, expired, or never-issued passcode.
// Any other error from VerifyPasscode is a cache transport failure.
var ErrPasscodeMismatch = errors.New("passcode does not match or has expired")

// generateOTP generates a secure random numeric passcode of the given length.
func generateOTP(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

func otpKey(draftID string) string {
	return fmt.Sprintf("otp:%s", draftID)
}

// IssuePasscode generates a passcode for the draft, stores it in the OTP
// cache with a TTL, and returns it for out-of-band delivery.
func IssuePasscode(ctx context.Context, draftID string) (string, time.Duration, error) {
	otp, err := generateOTP(otpLength)
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate passcode: %w", err)
	}
	ttl := time.Duration(config.AppConfig.OTPTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	client := GetOTPCacheClient()
	if err := client.Set(ctx, otpKey(draftID), otp, ttl).Err(); err != nil {
		return "", 0, fmt.Errorf("failed to cache passcode: %w", err)
	}
	return otp, ttl, nil
}

// VerifyPasscode compares the provided passcode against the cached one and
// deletes it on success so a code is only usable once.
func VerifyPasscode(ctx context.Context, draftID, provided string) error {
	client := GetOTPCacheClient()

	stored, err := client.Get(ctx, otpKey(draftID)).Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("%w: no passcode issued", ErrPasscodeMismatch)
		}
		return fmt.Errorf("failed to retrieve passcode: %w", err)
	}

	if stored != provided {
		return ErrPasscodeMismatch
	}

	if err := client.Del(ctx, otpKey(draftID)).Err(); err != nil {
		GetLogger().Sugar().Errorf("failed to delete passcode after verification: %v", err)
	}
	return nil
}
