package services

import (
	"errors"
	"log"
	"strings"

	"dermacare/internal/models"
	"dermacare/internal/repositories"
)

type PasswordResetService interface {
	RequestReset(email string) error
	ResetPassword(email, code, newPassword string) error
}

type passwordResetService struct {
	userRepo repositories.UserRepository
	otp      *OTPService
	auth     *AuthService
}

func NewPasswordResetService(userRepo repositories.UserRepository, otp *OTPService, auth *AuthService) PasswordResetService {
	return &passwordResetService{userRepo: userRepo, otp: otp, auth: auth}
}

// RequestReset — выдаёт код с purpose=reset_password. Несуществующий
// email наружу не отличим от существующего.
func (s *passwordResetService) RequestReset(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	_, err := s.otp.Issue(email, models.PurposeResetPassword, 0)
	if errors.Is(err, ErrNotFound) {
		// don't leak existence
		log.Printf("[password-reset] request for unknown email")
		return nil
	}
	return err
}

// ResetPassword — подтверждает код и меняет пароль. Старый
// refresh-токен сбрасывается: сессии, выданные под старым паролем,
// умирают вместе с ним.
func (s *passwordResetService) ResetPassword(email, code, newPassword string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if err := s.otp.Confirm(email, models.PurposeResetPassword, code); err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(user.ID, hash); err != nil {
		return err
	}
	if err := s.userRepo.ClearRefresh(user.ID); err != nil {
		return err
	}

	log.Printf("[password-reset] OK user_id=%d", user.ID)
	return nil
}
