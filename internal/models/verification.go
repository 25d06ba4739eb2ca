package models

import "time"

// Назначение кода: с ним связан эффект при подтверждении.
const (
	PurposeRegister      = "register"
	PurposeResetPassword = "reset_password"
)

// VerificationOtp — отдельная строка на каждую выдачу кода.
// Храним только bcrypt-хэш кода, TTL, счётчик попыток и счётчик
// переотправок, который переносится при reissue.
// Инвариант: на пару (user_id, purpose) не больше одной строки
// с consumed_at IS NULL.
type VerificationOtp struct {
	ID          int64     `json:"id"`
	UserID      int       `json:"user_id"`
	Purpose     string    `json:"purpose"`
	CodeHash    string    `json:"-"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	ResentCount int       `json:"resent_count"`
	SentAt      time.Time `json:"sent_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	// не null => терминальное состояние: подтверждён, исчерпан
	// или вытеснен переотправкой
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}

func (v *VerificationOtp) Consumed() bool { return v.ConsumedAt != nil }

func (v *VerificationOtp) Expired(now time.Time) bool { return now.After(v.ExpiresAt) }
