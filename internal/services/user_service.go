package services

import (
	"strings"

	"dermacare/internal/models"
	"dermacare/internal/repositories"
)

type UserService interface {
	Register(req *models.RegisterRequest) (*models.User, error)
	GetUserByID(id int) (*models.User, error)
}

type userService struct {
	repo repositories.UserRepository
	auth *AuthService
}

func NewUserService(repo repositories.UserRepository, auth *AuthService) UserService {
	return &userService{repo: repo, auth: auth}
}

// Register — создаёт пользователя: не подтверждён, активен, без
// сессии. Код подтверждения выдаёт вызывающий (OTPService), здесь
// только запись.
func (s *userService) Register(req *models.RegisterRequest) (*models.User, error) {
	userName := strings.ToLower(strings.TrimSpace(req.UserName))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.ExistsByUserNameOrEmail(userName, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UserName:     userName,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		Gender:       req.Gender,
		PasswordHash: hash,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUserByID(id int) (*models.User, error) {
	return s.repo.GetByID(id)
}
