package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ryus3/friendly-byte-shout-02/config"
	"github.com/ryus3/friendly-byte-shout-02/utils"
)

// SessionMiddleware resolves the session token against Redis and attaches the
// user identity to the request context. Requests without a token pass through
// anonymously; handlers that need auth check the context themselves.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		username, exists, err := config.GetRedisValue("Token:" + token)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := context.WithValue(c.Request.Context(), utils.ContextKeyToken, token)
		ctx = context.WithValue(ctx, utils.ContextKeyUsername, username)

		// Claims travel inside the token itself; a bad or expired token was
		// already rejected by the Redis lookup above, so decoding failures
		// only cost us the role hint.
		if parsed, err := utils.JwtValidate(token); err == nil && parsed.Valid {
			if claims, ok := parsed.Claims.(*utils.JwtCustomClaim); ok {
				ctx = utils.SetUserIdInContext(ctx, claims.ID)
				ctx = utils.SetUserRoleInContext(ctx, claims.Role)
			}
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
