package middleware

import (
	"net/http"
	"strings"

	"hue-chat/internal/handler"
	"hue-chat/internal/services"
	"hue-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the session token from the Authorization header or
// the session cookie. Resolving a session also slides its expiry, so every
// authenticated request doubles as a presence heartbeat.
func AuthMiddleware(service *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		userHex, err := service.ResolveSession(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		ctx := services.WithUserSessionContext(c.Request.Context(), userHex, token)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if token := extractBearer(c); token != "" {
		return token
	}
	if token, err := c.Cookie(handler.SessionCookie); err == nil {
		return token
	}
	return ""
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
