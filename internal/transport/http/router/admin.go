package router

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"b2b-market-api/internal/domain"
	mdw "b2b-market-api/internal/transport/http/middleware"
)

// NewAdminEngine 独立运维端：管理接口 + /metrics，通常只在内网监听
func NewAdminEngine(d *Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		ginzap.Ginzap(d.Log, time.RFC3339, true),
		ginzap.RecoveryWithZap(d.Log, true),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWT, d.DB, domain.RoleAdmin))
	MountAllAdmin(admin, d)

	return r
}
