package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendOtpEmail(email, code string, ttlMinutes int) error
	SendWelcomeEmail(email, userName string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendOtpEmail(email, code string, ttlMinutes int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your verification code")

	body := fmt.Sprintf(`
		<h3>Verification code</h3>
		<p>Your one-time code is: <strong>%s</strong></p>
		<p>The code expires in %d minutes.</p>
		<p>If you did not request this, you can ignore this email.</p>
	`, code, ttlMinutes)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	return nil
}

func (s *emailService) SendWelcomeEmail(email, userName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to DermaCare!")

	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your email has been verified and your account is ready.</p>
		<p>Best regards,<br>The DermaCare Team</p>
	`, userName)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}
