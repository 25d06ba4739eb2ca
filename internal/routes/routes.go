package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dermacare/internal/handlers"
	"dermacare/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	accessSecret []byte,
	registerHandler *handlers.RegisterHandler,
	verifyHandler *handlers.VerifyHandler,
	authHandler *handlers.AuthHandler,
	passwordHandler *handlers.PasswordHandler,
) *gin.Engine {

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	user := r.Group("/api/v1/user")

	// ---- public
	user.POST("/register", registerHandler.Register)
	user.POST("/register/confirm", verifyHandler.ConfirmUser)
	user.POST("/register/resend", verifyHandler.ResendUser)
	user.POST("/login", authHandler.Login)
	user.POST("/refresh-token", authHandler.RefreshToken)
	user.POST("/password/forgot", passwordHandler.ForgotPassword)
	user.POST("/password/reset", passwordHandler.ResetPassword)

	// ---- protected
	protected := user.Group("", middleware.AuthMiddleware(accessSecret))
	{
		protected.POST("/logout", authHandler.Logout)
		protected.GET("/me", authHandler.Me)
	}

	return r
}
