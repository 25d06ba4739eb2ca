package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("username or email already in use")

	// OTP
	ErrCodeInvalid     = errors.New("code invalid")
	ErrCodeExpired     = errors.New("code invalid or expired")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrResendThrottled = errors.New("resend throttled")

	// sessions
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("email not verified")
	ErrDeactivated        = errors.New("account is deactivated")
	ErrUnauthorized       = errors.New("invalid refresh token")
)

// ThrottledError — отказ по кулдауну с машиночитаемым остатком
// ожидания. errors.Is(err, ErrResendThrottled) == true.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("resend throttled, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *ThrottledError) Is(target error) bool { return target == ErrResendThrottled }
