package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"punch/internal/pkg/jwtutil"
	"punch/internal/transport/http/response"
)

const ContextUserIDKey = "user_id"

// OptionalAuthJWT lets requests without an Authorization header through.
// A header that is present must carry a valid bearer token; its subject is
// stored under ContextUserIDKey.
func OptionalAuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.Next()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, http.StatusUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID())
		c.Next()
	}
}

// AuthenticatedUserID returns the token subject, if a token was presented.
func AuthenticatedUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", false
	}
	userID, ok := v.(string)
	return userID, ok
}
