package jwt

import (
	"StoreLink/pkg/back"
	"StoreLink/pkg/util/myjwt"
	"StoreLink/pkg/xerr"
	"strings"

	"github.com/gin-gonic/gin"
)

// Auth 管理端 JWT 校验，通过后把租户标识塞进上下文
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			back.Error(c, xerr.Unauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := myjwt.ParseToken(tokenString)
		if err != nil {
			back.Error(c, xerr.Unauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("tenantRef", claims.TenantRef)
		c.Set("storeName", claims.StoreName)
		c.Next()
	}
}
