// Package http 组装gin路由
package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/bookhub/internal/domain/user"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/internal/interface/http/handler"
	"github.com/xiebiao/bookhub/internal/interface/http/middleware"
	"github.com/xiebiao/bookhub/pkg/response"
)

// Handlers 所有HTTP处理器，便于wire一次性注入
type Handlers struct {
	User   *handler.UserHandler
	Book   *handler.BookHandler
	Review *handler.ReviewHandler
	Cart   *handler.CartHandler
	Order  *handler.OrderHandler
	Stats  *handler.StatsHandler
}

// NewRouter 创建并配置gin引擎
// 中间件顺序：Recovery → Tracing → Logger → Metrics → CORS → 路由
// Logger在Tracing之后，才能从Context取到TraceID
func NewRouter(cfg *config.Config, log *zap.Logger, h Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.Tracing(),
		middleware.Logger(log),
	)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
	r.Use(cors.New(corsConfig(cfg.CORS)))

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "healthy"})
	})

	// Swagger文档：http://localhost:8080/swagger/index.html
	// 生产环境建议关闭或加访问控制
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	registerPublic(v1, h)

	authorized := v1.Group("")
	authorized.Use(auth.RequireAuth())
	registerAuthorized(authorized, h)

	admin := v1.Group("/admin")
	admin.Use(auth.RequireAuth(), auth.RequireRole(user.RoleAdmin))
	registerAdmin(admin, h)

	return r
}

func corsConfig(cfg config.CORSConfig) cors.Config {
	c := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	if len(c.AllowOrigins) == 0 || (len(c.AllowOrigins) == 1 && c.AllowOrigins[0] == "*") {
		c.AllowOrigins = nil
		c.AllowAllOrigins = true
	}
	return c
}

// registerPublic 无需登录的接口
func registerPublic(v1 *gin.RouterGroup, h Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.User.Register)
		auth.POST("/login", h.User.Login)
		auth.POST("/refresh", h.User.Refresh)
	}

	v1.GET("/books", h.Book.ListBooks)
	v1.GET("/books/:id", h.Book.GetBook)
	v1.GET("/books/:id/reviews", h.Review.ListReviews)
	v1.GET("/reviews/:id/comments", h.Review.ListComments)
	v1.GET("/authors", h.Book.ListAuthors)
	v1.GET("/categories", h.Book.ListCategories)
}

// registerAuthorized 需要登录的接口
func registerAuthorized(g *gin.RouterGroup, h Handlers) {
	g.POST("/auth/logout", h.User.Logout)

	me := g.Group("/users/me")
	{
		me.GET("", h.User.GetProfile)
		me.PATCH("", h.User.UpdateProfile)
		me.DELETE("", h.User.DeleteAccount)
	}

	// 书评与评论
	g.POST("/books/:id/reviews", h.Review.CreateReview)
	g.PUT("/reviews/:id", h.Review.UpdateReview)
	g.DELETE("/reviews/:id", h.Review.DeleteReview)
	g.POST("/reviews/:id/likes", h.Review.LikeReview)
	g.DELETE("/reviews/:id/likes", h.Review.UnlikeReview)
	g.POST("/reviews/:id/comments", h.Review.CreateComment)
	g.PUT("/comments/:id", h.Review.UpdateComment)
	g.DELETE("/comments/:id", h.Review.DeleteComment)
	g.POST("/comments/:id/likes", h.Review.LikeComment)
	g.DELETE("/comments/:id/likes", h.Review.UnlikeComment)

	// 心愿单
	g.GET("/wishlist", h.Cart.ListWishlist)
	g.PUT("/wishlist/:bookId", h.Cart.AddToWishlist)
	g.DELETE("/wishlist/:bookId", h.Cart.RemoveFromWishlist)

	// 购物车
	cart := g.Group("/cart")
	{
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.AbandonCart)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:bookId", h.Cart.UpdateItem)
		cart.DELETE("/items/:bookId", h.Cart.RemoveItem)
		cart.POST("/checkout", h.Cart.Checkout)
	}

	// 订单
	orders := g.Group("/orders")
	{
		orders.GET("", h.Order.ListMyOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.POST("/:id/cancel", h.Order.CancelOrder)
	}
}

// registerAdmin 管理员接口
func registerAdmin(admin *gin.RouterGroup, h Handlers) {
	admin.POST("/books", h.Book.CreateBook)
	admin.PUT("/books/:id", h.Book.UpdateBook)
	admin.DELETE("/books/:id", h.Book.DeleteBook)
	admin.POST("/authors", h.Book.CreateAuthor)
	admin.POST("/categories", h.Book.CreateCategory)

	admin.GET("/orders", h.Order.ListAllOrders)
	admin.PATCH("/orders/:id/status", h.Order.UpdateOrderStatus)

	stats := admin.Group("/stats")
	{
		stats.GET("/top-books", h.Stats.TopBooks)
		stats.GET("/daily-orders", h.Stats.DailyOrders)
		stats.GET("/daily-signups", h.Stats.DailySignups)
	}
}
