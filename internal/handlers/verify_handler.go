package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dermacare/internal/models"
	"dermacare/internal/services"
)

type VerifyHandler struct {
	OTP *services.OTPService
}

func NewVerifyHandler(otp *services.OTPService) *VerifyHandler { return &VerifyHandler{OTP: otp} }

func (h *VerifyHandler) ConfirmUser(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.OTP.Confirm(req.Email, models.PurposeRegister, req.Code); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User email not found"})
		case errors.Is(err, services.ErrTooManyAttempts):
			c.JSON(http.StatusBadRequest, gin.H{"error": "too many attempts, please resend"})
		case errors.Is(err, services.ErrCodeInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
		case errors.Is(err, services.ErrCodeExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired code, please resend"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "confirmation failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

func (h *VerifyHandler) ResendUser(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.OTP.Resend(req.Email); err != nil {
		var throttled *services.ThrottledError
		switch {
		case errors.As(err, &throttled):
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many requests, try later",
				"retry_after": int(throttled.RetryAfter.Seconds()) + 1,
			})
		case errors.Is(err, services.ErrResendThrottled):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, try later"})
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User email not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "resend failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent"})
}
