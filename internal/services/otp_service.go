package services

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"dermacare/internal/models"
	"dermacare/internal/repositories"
)

// Настройки безопасности (можно вынести в конфиг при желании)
const (
	otpTTL            = 10 * time.Minute
	otpMaxAttempts    = 3
	otpMaxResends     = 3
	otpResendCooldown = 60 * time.Second
)

// OTPService — выдача, переотправка и подтверждение одноразовых
// кодов. Каждая выдача — новая строка; переотправка сначала гасит
// старую (consume), потом создаёт новую с перенесённым resent_count.
type OTPService struct {
	VerifRepo repositories.VerificationRepository
	UserRepo  repositories.UserRepository
	Emails    EmailService
	CodeTTL   time.Duration // если 0 — возьмём otpTTL

	now func() time.Time
}

func NewOTPService(
	verifRepo repositories.VerificationRepository,
	userRepo repositories.UserRepository,
	emails EmailService,
) *OTPService {
	return &OTPService{
		VerifRepo: verifRepo,
		UserRepo:  userRepo,
		Emails:    emails,
		CodeTTL:   otpTTL,
		now:       time.Now,
	}
}

// generateCode — 6-значный код из криптографического источника.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (s *OTPService) ttl() time.Duration {
	if s.CodeTTL > 0 {
		return s.CodeTTL
	}
	return otpTTL
}

// Issue — выдать код для email+purpose. Сырой код возвращается
// вызывающему только ради доставки, нигде не сохраняется и не
// логируется. Если для register пользователь уже подтверждён —
// тихий no-op с пустым кодом.
func (s *OTPService) Issue(email, purpose string, resentCount int) (string, error) {
	user, err := s.UserRepo.GetByEmail(email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrNotFound
	}
	if purpose == models.PurposeRegister && user.Verified() {
		return "", nil
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}
	codeHashBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt generate: %w", err)
	}

	sentAt := s.now()
	// всё незакрытое по этой паре гасим до вставки: живая строка
	// всегда ровно одна
	if err := s.VerifRepo.ConsumeOpen(user.ID, purpose, sentAt); err != nil {
		return "", err
	}
	v := &models.VerificationOtp{
		UserID:      user.ID,
		Purpose:     purpose,
		CodeHash:    string(codeHashBytes),
		Attempts:    0,
		MaxAttempts: otpMaxAttempts,
		ResentCount: resentCount,
		SentAt:      sentAt,
		ExpiresAt:   sentAt.Add(s.ttl()),
	}
	if _, err := s.VerifRepo.Create(v); err != nil {
		return "", err
	}

	// Доставка best-effort: неудача письма не роняет выдачу.
	if s.Emails != nil {
		if err := s.Emails.SendOtpEmail(user.Email, code, int(s.ttl().Minutes())); err != nil {
			log.Printf("[otp][issue] warning: failed to send otp email to user_id=%d: %v", user.ID, err)
		}
	}

	log.Printf("[otp][issue] ok: user_id=%d purpose=%s resent=%d", user.ID, purpose, resentCount)
	return code, nil
}

// Resend — переотправка кода регистрации. Потолок переотправок
// кумулятивный: resent_count переносится в новую строку, поэтому
// лимит считается на всю цепочку, а не на строку. Кулдаун меряем от
// момента выдачи (sent_at), попытки подтверждения его не трогают.
func (s *OTPService) Resend(email string) (string, error) {
	user, err := s.UserRepo.GetByEmail(email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrNotFound
	}
	if user.Verified() {
		return "", nil
	}

	now := s.now()
	v, err := s.VerifRepo.GetActive(user.ID, models.PurposeRegister, now)
	if err != nil {
		return "", err
	}
	if v == nil {
		// живого кода нет — как первая выдача
		return s.Issue(email, models.PurposeRegister, 0)
	}

	if v.ResentCount >= otpMaxResends {
		return "", ErrResendThrottled
	}
	if wait := otpResendCooldown - now.Sub(v.SentAt); wait > 0 {
		return "", &ThrottledError{RetryAfter: wait}
	}

	// гасим старый код до выдачи нового: инвариант "не больше
	// одного живого" держится на этом CAS
	ok, err := s.VerifRepo.Consume(v.ID, now)
	if err != nil {
		return "", err
	}
	if !ok {
		// параллельный resend/confirm успел раньше
		return "", ErrResendThrottled
	}

	log.Printf("[otp][resend] user_id=%d resent=%d", user.ID, v.ResentCount+1)
	return s.Issue(email, models.PurposeRegister, v.ResentCount+1)
}

// Confirm — подтверждение кода. Каждый вызов стоит одну попытку,
// удачный или нет. Проверка потолка попыток идёт до сравнения кода.
// Для purpose=register при успехе проставляется users.verified_at.
func (s *OTPService) Confirm(email, purpose, code string) error {
	user, err := s.UserRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	now := s.now()
	v, err := s.VerifRepo.GetActive(user.ID, purpose, now)
	if err != nil {
		return err
	}
	if v == nil {
		// нет, протух или уже израсходован — наружу одно и то же
		return ErrCodeExpired
	}

	if v.Attempts >= v.MaxAttempts {
		if _, err := s.VerifRepo.Consume(v.ID, now); err != nil {
			return err
		}
		log.Printf("[otp][confirm] exhausted: user_id=%d verification_id=%d", user.ID, v.ID)
		return ErrTooManyAttempts
	}

	if _, err := s.VerifRepo.IncrementAttempts(v.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// строку успели consume-ить параллельно
			return ErrCodeExpired
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(v.CodeHash), []byte(code)); err != nil {
		log.Printf("[otp][confirm] mismatch: user_id=%d verification_id=%d", user.ID, v.ID)
		return ErrCodeInvalid
	}

	ok, err := s.VerifRepo.Consume(v.ID, now)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeExpired
	}

	if purpose == models.PurposeRegister {
		if err := s.UserRepo.MarkVerified(user.ID, now); err != nil {
			// Код уже погашен, а пользователь не помечен: это надо
			// разруливать руками, молча глотать нельзя.
			log.Printf("[otp][confirm] CRITICAL: verification_id=%d consumed but user_id=%d not marked verified: %v",
				v.ID, user.ID, err)
			return fmt.Errorf("mark verified after consume (user_id=%d, verification_id=%d): %w", user.ID, v.ID, err)
		}
		if s.Emails != nil {
			if err := s.Emails.SendWelcomeEmail(user.Email, user.UserName); err != nil {
				log.Printf("[otp][confirm] warning: failed to send welcome email to user_id=%d: %v", user.ID, err)
			}
		}
	}

	log.Printf("[otp][confirm] OK user_id=%d purpose=%s", user.ID, purpose)
	return nil
}
