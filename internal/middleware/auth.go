package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"dermacare/internal/utils"
)

// accessLeeway — допуск на рассинхрон часов при проверке exp.
const accessLeeway = 2 * time.Minute

// AccessCookie / RefreshCookie — имена куков, в которых транспорт
// носит токены. Те же значения умеет читать bearer-заголовок.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// tokenFromRequest — сначала кука, потом Authorization: Bearer.
func tokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(AccessCookie); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func AuthMiddleware(accessSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		// preflight пропускаем
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized request"})
			return
		}

		claims, err := utils.ParseAccessToken(tokenStr, accessSecret,
			jwt.WithLeeway(accessLeeway), jwt.WithExpirationRequired())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_name", claims.UserName)
		c.Set("email", claims.Email)

		c.Next()
	}
}
