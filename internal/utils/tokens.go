package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"dermacare/internal/models"
)

// AccessClaims — короткоживущий токен, наружу уходит id + handle + email.
type AccessClaims struct {
	UserID   int    `json:"user_id"`
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims — только id. Подписывается отдельным секретом.
type RefreshClaims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

func NewAccessToken(user *models.User, secret []byte, ttl time.Duration) (string, error) {
	claims := &AccessClaims{
		UserID:   user.ID,
		UserName: user.UserName,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func NewRefreshToken(userID int, secret []byte, ttl time.Duration) (string, error) {
	claims := &RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti: два токена, выпущенные в одну секунду, не должны совпасть
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// hmacKeyFunc — принимаем только HMAC (HS256 и т.п.)
func hmacKeyFunc(secret []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}
}

func ParseAccessToken(tokenStr string, secret []byte, opts ...jwt.ParserOption) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, hmacKeyFunc(secret), opts...)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func ParseRefreshToken(tokenStr string, secret []byte) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, hmacKeyFunc(secret))
	if err != nil {
		return nil, fmt.Errorf("parse refresh token: %w", err)
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
