package app

import (
	"database/sql"
	"fmt"
	"log"

	"dermacare/internal/config"
	"dermacare/internal/handlers"
	"dermacare/internal/repositories"
	"dermacare/internal/routes"
	"dermacare/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "dermacare/docs"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Ошибка подключения к БД: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка закрытия БД: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	verifRepo := repositories.NewVerificationRepository(db)

	// === Services ===
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	authService := services.NewAuthService(userRepo, services.TokenConfig{
		AccessSecret:  []byte(cfg.Auth.AccessSecret),
		RefreshSecret: []byte(cfg.Auth.RefreshSecret),
		AccessTTL:     cfg.Auth.AccessTTL(),
		RefreshTTL:    cfg.Auth.RefreshTTL(),
	})
	otpService := services.NewOTPService(verifRepo, userRepo, emailService)
	userService := services.NewUserService(userRepo, authService)
	passwordResetService := services.NewPasswordResetService(userRepo, otpService, authService)

	// === Handlers ===
	registerHandler := handlers.NewRegisterHandler(userService, otpService)
	verifyHandler := handlers.NewVerifyHandler(otpService)
	authHandler := handlers.NewAuthHandler(authService, userService, cfg.Auth)
	passwordHandler := handlers.NewPasswordHandler(passwordResetService)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		[]byte(cfg.Auth.AccessSecret),
		registerHandler,
		verifyHandler,
		authHandler,
		passwordHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Ошибка запуска сервера: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
