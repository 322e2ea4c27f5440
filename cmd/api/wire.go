//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码（wire_gen.go）
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// 重新生成：wire gen ./cmd/api

package main

import (
	"github.com/google/wire"

	appbook "github.com/xiebiao/bookhub/internal/application/book"
	appcart "github.com/xiebiao/bookhub/internal/application/cart"
	appcomment "github.com/xiebiao/bookhub/internal/application/comment"
	apporder "github.com/xiebiao/bookhub/internal/application/order"
	appreview "github.com/xiebiao/bookhub/internal/application/review"
	appstats "github.com/xiebiao/bookhub/internal/application/stats"
	appuser "github.com/xiebiao/bookhub/internal/application/user"
	appwishlist "github.com/xiebiao/bookhub/internal/application/wishlist"
	"github.com/xiebiao/bookhub/internal/domain/book"
	"github.com/xiebiao/bookhub/internal/domain/shared"
	"github.com/xiebiao/bookhub/internal/domain/user"
	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/internal/infrastructure/messaging"
	"github.com/xiebiao/bookhub/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookhub/internal/infrastructure/persistence/redis"
	apihttp "github.com/xiebiao/bookhub/internal/interface/http"
	"github.com/xiebiao/bookhub/internal/interface/http/handler"
	"github.com/xiebiao/bookhub/internal/interface/http/middleware"
)

// infrastructureSet 基础设施层：日志、数据库、Redis、消息队列
// 返回cleanup的Provider由Wire按创建的逆序串联
var infrastructureSet = wire.NewSet(
	provideLogger,
	mysql.NewDB,
	redis.NewClient,
	redis.NewSessionStore,
	wire.Bind(new(appuser.SessionStore), new(*redis.SessionStore)),
	wire.Bind(new(middleware.TokenBlacklist), new(*redis.SessionStore)),
	messaging.NewOrderEventPublisher,
	provideJWTManager,
)

// repositorySet 仓储层
var repositorySet = wire.NewSet(
	mysql.NewTxManager,
	wire.Bind(new(shared.TxManager), new(*mysql.TxManager)),
	mysql.NewUserRepository,
	mysql.NewTokenRepository,
	mysql.NewBookRepository,
	mysql.NewAuthorRepository,
	mysql.NewCategoryRepository,
	mysql.NewReviewRepository,
	mysql.NewCommentRepository,
	mysql.NewWishlistRepository,
	mysql.NewCartRepository,
	mysql.NewOrderRepository,
	mysql.NewStatsRepository,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
)

// applicationSet 应用层用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshTokenUseCase,
	appuser.NewProfileUseCase,
	appbook.NewManageBookUseCase,
	appbook.NewQueryBookUseCase,
	appreview.NewRatingRecomputer,
	appreview.NewReviewUseCase,
	appcomment.NewCommentUseCase,
	appwishlist.NewWishlistUseCase,
	appcart.NewCartUseCase,
	apporder.NewCheckoutUseCase,
	apporder.NewQueryOrderUseCase,
	apporder.NewTransitionOrderUseCase,
	appstats.NewStatsUseCase,
)

// interfaceSet 接口层：中间件、Handler、路由
var interfaceSet = wire.NewSet(
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewReviewHandler,
	handler.NewCartHandler,
	handler.NewOrderHandler,
	handler.NewStatsHandler,
	wire.Struct(new(apihttp.Handlers), "*"),
	apihttp.NewRouter,
)

// InitializeApp 组装整个应用
// 返回的cleanup按逆序关闭MQ、Redis、数据库并刷新日志
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
		newApp,
	)
	return nil, nil, nil
}
