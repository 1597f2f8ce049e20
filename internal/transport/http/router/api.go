package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-contacts-api/internal/core/auth"
	"go-contacts-api/internal/core/cache"
	"go-contacts-api/internal/core/mailer"
	"go-contacts-api/internal/core/storage"
	mdw "go-contacts-api/internal/transport/http/middleware"
)

// Deps 路由层依赖，main 里显式构造注入
type Deps struct {
	Log      *zap.Logger
	JWT      *auth.JWTer
	Profiles *cache.ProfileCache
	Mailer   *mailer.Mailer       // 可为 nil（未配置则不发信）
	Avatars  *storage.AvatarStore // 可为 nil（头像接口返回 500）
	TestMode bool
}

func NewAPIEngine(db *gorm.DB, d Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(d.Log, true),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
		cors.Default(),
	)

	// 健康检查 + 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// /users 公共 + 鉴权两个分组（前缀相同，路由不重叠）
	users := r.Group("/users")
	usersAuth := r.Group("/users")
	usersAuth.Use(mdw.AuthJWT(d.JWT))
	mountUserActions(users, usersAuth, db, d)

	// /contacts 全部要求登录
	contacts := r.Group("/contacts")
	contacts.Use(mdw.AuthJWT(d.JWT))
	mountContactActions(contacts, db, d)

	return r
}
