package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/CoinClashFun/flipoff-backend/internal/config"

	"github.com/gin-gonic/gin"
)

// OracleMiddleware verifies that an inbound randomness callback really comes
// from the registered oracle, via the shared secret header.
func OracleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Oracle-Key")
		secret := config.AppConfig.OracleSecret
		if secret == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Oracle verification failed"})
			return
		}
		c.Next()
	}
}
