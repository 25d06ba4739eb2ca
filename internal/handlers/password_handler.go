package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dermacare/internal/services"
)

type PasswordHandler struct {
	resetService services.PasswordResetService
}

func NewPasswordHandler(resetService services.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{resetService: resetService}
}

// ForgotPassword — ответ одинаковый для любого email, существование
// аккаунта отсюда не вытащить.
func (h *PasswordHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resetService.RequestReset(req.Email); err != nil {
		log.Printf("[password][forgot] internal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If that account exists, a reset code has been sent"})
}

func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Code        string `json:"code" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resetService.ResetPassword(req.Email, req.Code, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrTooManyAttempts):
			c.JSON(http.StatusBadRequest, gin.H{"error": "too many attempts, request a new code"})
		case errors.Is(err, services.ErrCodeInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
		// не найден и протухший код наружу неразличимы
		case errors.Is(err, services.ErrCodeExpired), errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired code"})
		default:
			log.Printf("[password][reset] internal: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reset failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated, please log in again"})
}
