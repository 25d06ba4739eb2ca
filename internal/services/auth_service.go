package services

import (
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"dermacare/internal/models"
	"dermacare/internal/repositories"
	"dermacare/internal/utils"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenConfig — секреты и сроки жизни токенов. Секреты разные:
// refresh, украденный вместе с access-секретом, бесполезен.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// AuthService — вход по паролю, ротация refresh-токена, выход.
// Живая сессия ровно одна: users.refresh_token перезаписывается при
// каждом логине и каждой ротации.
type AuthService struct {
	UserRepo repositories.UserRepository
	Tokens   TokenConfig
}

func NewAuthService(userRepo repositories.UserRepository, tokens TokenConfig) *AuthService {
	return &AuthService{UserRepo: userRepo, Tokens: tokens}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *AuthService) mintPair(user *models.User) (*TokenPair, error) {
	access, err := utils.NewAccessToken(user, s.Tokens.AccessSecret, s.Tokens.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(user.ID, s.Tokens.RefreshSecret, s.Tokens.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Login — identifier это email или user_name. Наружу "не найден" и
// "пароль не подошёл" неразличимы, чтобы не перебирали аккаунты.
func (s *AuthService) Login(identifier, password string) (*models.User, *TokenPair, error) {
	identifier = strings.TrimSpace(strings.ToLower(identifier))

	user, err := s.UserRepo.GetByIdentifier(identifier)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		log.Printf("[auth][login] unknown identifier=%q", identifier)
		return nil, nil, ErrInvalidCredentials
	}
	if !user.Verified() {
		log.Printf("[auth][login] not verified user_id=%d", user.ID)
		return nil, nil, ErrNotVerified
	}
	if !user.IsActive {
		log.Printf("[auth][login] deactivated user_id=%d", user.ID)
		return nil, nil, ErrDeactivated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Printf("[auth][login] password mismatch user_id=%d", user.ID)
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.mintPair(user)
	if err != nil {
		return nil, nil, err
	}
	if err := s.UserRepo.UpdateRefresh(user.ID, pair.RefreshToken); err != nil {
		return nil, nil, err
	}

	log.Printf("[auth][login] success user_id=%d", user.ID)
	return user, pair, nil
}

// Refresh — обмен refresh-токена на новую пару. Токен должен быть не
// просто валидно подписан, а совпадать с текущим сохранённым:
// вытесненный ротацией или logout-ом отвергается.
func (s *AuthService) Refresh(presented string) (*models.User, *TokenPair, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return nil, nil, ErrUnauthorized
	}

	claims, err := utils.ParseRefreshToken(presented, s.Tokens.RefreshSecret)
	if err != nil {
		log.Printf("[auth][refresh] bad token: %v", err)
		return nil, nil, ErrUnauthorized
	}

	user, err := s.UserRepo.GetByRefreshToken(presented)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		// подпись верна, но токен уже не текущий — возможный replay
		log.Printf("[auth][refresh] superseded token user_id=%d", claims.UserID)
		return nil, nil, ErrUnauthorized
	}

	pair, err := s.mintPair(user)
	if err != nil {
		return nil, nil, err
	}
	// ротация безусловная: CAS по старому значению
	rotated, err := s.UserRepo.RotateRefresh(presented, pair.RefreshToken)
	if err != nil {
		return nil, nil, err
	}
	if rotated == nil {
		return nil, nil, ErrUnauthorized
	}

	log.Printf("[auth][refresh] rotated user_id=%d", rotated.ID)
	return rotated, pair, nil
}

func (s *AuthService) Logout(userID int) error {
	if err := s.UserRepo.ClearRefresh(userID); err != nil {
		return err
	}
	log.Printf("[auth][logout] user_id=%d", userID)
	return nil
}
