package models

import "time"

type User struct {
	ID           int    `json:"id"`
	UserName     string `json:"user_name"`
	FullName     string `json:"full_name,omitempty"`
	Email        string `json:"email"`
	Gender       string `json:"gender"`
	PasswordHash string `json:"-"` // не отдаём наружу

	// null = почта ещё не подтверждена
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	IsActive   bool       `json:"is_active"`

	// refresh-хранение в БД: одна живая сессия на пользователя
	RefreshToken *string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// Verified — подтверждена ли почта.
func (u *User) Verified() bool { return u.VerifiedAt != nil }

type RegisterRequest struct {
	UserName string `json:"user_name" binding:"required"`
	FullName string `json:"full_name"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=100"`
	Gender   string `json:"gender" binding:"required,oneof=male female other"`
}

type LoginRequest struct {
	// email или user_name, регистр не важен
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}
