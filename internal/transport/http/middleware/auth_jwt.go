package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"b2b-market-api/internal/core/auth"
	"b2b-market-api/internal/domain"
	resp "b2b-market-api/internal/transport/http/response"
)

// AuthJWT 解析 Bearer token、按 uid 加载用户行并塞进上下文。
// 当前请求角色等信息全部从这里重建，服务端不存会话。
// roles 非空时要求命中其中之一。
func AuthJWT(j *auth.JWTer, db *gorm.DB, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}

		var u domain.User
		if err := db.WithContext(c).First(&u, "id = ?", claims.UID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		// 禁用账号的存量 token 立即失效
		if !u.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "account deactivated"))
			return
		}

		if len(roles) > 0 {
			ok := false
			for _, r := range roles {
				if u.Role == r {
					ok = true
					break
				}
			}
			if !ok {
				c.AbortWithStatusJSON(http.StatusForbidden, resp.Error(resp.CodeForbidden, "forbidden"))
				return
			}
		}

		c.Set("actor", &u)
		c.Set("userId", u.ID)
		c.Set("role", u.Role)
		c.Next()
	}
}
