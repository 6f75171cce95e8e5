package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"devconnect/token"
)

// Context keys set by TokenAuth for downstream handlers.
const (
	CtxUserID = "userId"
	CtxClaims = "claims"
)

// TokenAuth enforces a valid bearer credential before a protected handler
// runs. The token is read from the x-auth-token header (the header the
// frontend sends), with Authorization: Bearer accepted as a fallback. The
// middleware either responds 401 and aborts, or attaches the decoded claims
// and proceeds; never both.
func TokenAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("x-auth-token")
		if tokenString == "" {
			if authHeader := c.GetHeader("Authorization"); authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && parts[0] == "Bearer" {
					tokenString = parts[1]
				}
			}
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token, authorization denied"})
			return
		}

		claims, err := token.Verify(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is not valid"})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}
