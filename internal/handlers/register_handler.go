package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dermacare/internal/authz"
	"dermacare/internal/models"
	"dermacare/internal/services"
)

type RegisterHandler struct {
	userService services.UserService
	otpService  *services.OTPService
}

func NewRegisterHandler(userService services.UserService, otpService *services.OTPService) *RegisterHandler {
	return &RegisterHandler{userService: userService, otpService: otpService}
}

// @Summary      Регистрация пользователя
// @Description  Создаёт аккаунт и отправляет код подтверждения на почту
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        register  body      models.RegisterRequest  true  "Данные регистрации"
// @Success      201       {object}  map[string]interface{}
// @Failure      400       {object}  map[string]interface{}
// @Failure      409       {object}  map[string]string
// @Failure      500       {object}  map[string]string
// @Router       /api/v1/user/register [post]
func (h *RegisterHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	req.UserName = strings.ToLower(strings.TrimSpace(req.UserName))
	if err := authz.ValidateUserName(req.UserName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}
	if authz.IsReservedUserName(req.UserName) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is reserved, please choose another one"})
		return
	}
	if err := authz.ValidateFullName(strings.TrimSpace(req.FullName)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	user, err := h.userService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username or Email already in use"})
			return
		}
		log.Printf("[auth][register] internal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User creation failed"})
		return
	}

	// сырой код уходит только в письмо, в ответ не попадает
	if _, err := h.otpService.Issue(user.Email, models.PurposeRegister, 0); err != nil {
		log.Printf("[auth][register] failed to issue otp for user_id=%d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue OTP"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("User registered successfully. OTP sent to %s", user.Email),
		"user":    user,
	})
}
