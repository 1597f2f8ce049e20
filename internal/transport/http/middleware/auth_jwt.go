package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-contacts-api/internal/core/auth"
	resp "go-contacts-api/internal/transport/http/response"
)

// AuthJWT 解析 Bearer 访问令牌。解析失败一律 401，
// 不向调用方区分缺失/过期/签名错。角色不进 token，由各接口查库判断。
func AuthJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.ParseAccess(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		c.Set("userId", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}
