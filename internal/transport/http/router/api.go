package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"b2b-market-api/internal/domain"
	mdw "b2b-market-api/internal/transport/http/middleware"
)

// NewAPIEngine 买家/卖家侧 + 管理分组的主引擎
func NewAPIEngine(d *Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
		cors.Default(),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	api := r.Group("/api")

	// 各业务模块自带鉴权分组
	MountAllAPI(api, d)

	// 管理分组（统一要求 admin 角色）
	admin := api.Group("/admin")
	admin.Use(mdw.AuthJWT(d.JWT, d.DB, domain.RoleAdmin))
	MountAllAdmin(admin, d)

	return r
}
