package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dermacare/internal/config"
	"dermacare/internal/middleware"
	"dermacare/internal/models"
	"dermacare/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
	userService services.UserService
	authCfg     config.AuthConfig
}

func NewAuthHandler(authService *services.AuthService, userService services.UserService, authCfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService, authCfg: authCfg}
}

// setTokenCookies — httpOnly всегда; secure и SameSite зависят от
// окружения (dev: Lax без secure, prod: None + secure).
func (h *AuthHandler) setTokenCookies(c *gin.Context, pair *services.TokenPair) {
	if h.authCfg.Production {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(middleware.AccessCookie, pair.AccessToken,
		int(h.authCfg.AccessTTL().Seconds()), "/", "", h.authCfg.Production, true)
	c.SetCookie(middleware.RefreshCookie, pair.RefreshToken,
		int(h.authCfg.RefreshTTL().Seconds()), "/", "", h.authCfg.Production, true)
}

func (h *AuthHandler) clearTokenCookies(c *gin.Context) {
	c.SetCookie(middleware.AccessCookie, "", -1, "/", "", h.authCfg.Production, true)
	c.SetCookie(middleware.RefreshCookie, "", -1, "/", "", h.authCfg.Production, true)
}

// @Summary      Вход в систему
// @Description  Аутентифицирует по email или user_name и возвращает пару токенов
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Данные для входа"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/v1/user/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][login] bad request: bind json failed: err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, pair, err := h.authService.Login(req.Identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotVerified):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Please verify your email before logging in"})
		case errors.Is(err, services.ErrDeactivated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		default:
			log.Printf("[auth][login] internal: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	h.setTokenCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user, // PasswordHash и RefreshToken помечены json:"-", наружу не уйдут
		"tokens":  pair,
	})
}

// @Summary      Ротация refresh-токена
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/user/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	// кука в приоритете, тело — для не-браузерных клиентов
	presented, _ := c.Cookie(middleware.RefreshCookie)
	if strings.TrimSpace(presented) == "" {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.ShouldBindJSON(&req); err == nil {
			presented = req.RefreshToken
		}
	}
	if strings.TrimSpace(presented) == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token is required"})
		return
	}

	user, pair, err := h.authService.Refresh(presented)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
			return
		}
		log.Printf("[auth][refresh] internal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh token"})
		return
	}

	h.setTokenCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"message": "Token refreshed successfully",
		"user":    user,
		"tokens":  pair,
	})
}

// @Summary      Выход: сбрасывает сохранённый refresh-токен и куки
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/user/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized request"})
		return
	}

	if err := h.authService.Logout(userID); err != nil {
		log.Printf("[auth][logout] internal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}

	h.clearTokenCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// @Summary      Профиль текущего пользователя
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/user/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized request"})
		return
	}
	user, err := h.userService.GetUserByID(userID)
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
