//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入（如Spring的@Autowired）不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

	appbook "github.com/xiebiao/bookmall/internal/application/book"
	appcart "github.com/xiebiao/bookmall/internal/application/cart"
	apporder "github.com/xiebiao/bookmall/internal/application/order"
	apppurchase "github.com/xiebiao/bookmall/internal/application/purchase"
	appuser "github.com/xiebiao/bookmall/internal/application/user"
	"github.com/xiebiao/bookmall/internal/domain/book"
	"github.com/xiebiao/bookmall/internal/domain/user"
	"github.com/xiebiao/bookmall/internal/infrastructure/config"
	"github.com/xiebiao/bookmall/internal/infrastructure/eventbus"
	"github.com/xiebiao/bookmall/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookmall/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookmall/internal/interface/http/handler"
	"github.com/xiebiao/bookmall/internal/interface/http/middleware"
	"github.com/xiebiao/bookmall/pkg/jwt"
	"github.com/xiebiao/bookmall/pkg/mq"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,     // 加载配置文件
	mysql.NewDB,     // 创建MySQL连接
	redis.NewClient, // 创建Redis连接
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewCartRepository,
	mysql.NewOrderRepository,
	mysql.NewPurchaseRepository,
	mysql.NewStockLedger, // 库存台账
	mysql.NewTxManager,   // 事务管理器

	// 各应用包声明自己的TxManager接口,统一由mysql.TxManager实现
	wire.Bind(new(apporder.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(apppurchase.TxManager), new(*mysql.TxManager)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,

	appbook.NewPublishBookUseCase,
	appbook.NewListBooksUseCase,

	appcart.NewAddItemUseCase,
	appcart.NewUpdateItemUseCase,
	appcart.NewRemoveItemUseCase,
	appcart.NewGetCartUseCase,

	apporder.NewCheckoutUseCase,
	apporder.NewListOrdersUseCase,
	apporder.NewGetOrderUseCase,
	apporder.NewCancelOrderUseCase,
	apporder.NewUpdateStatusUseCase,

	apppurchase.NewReplenishUseCase,
	apppurchase.NewListPurchaseOrdersUseCase,
	apppurchase.NewConfirmUseCase,
	apppurchase.NewCancelUseCase,

	// 结账用例只依赖Replenisher接口,由补货用例实现
	wire.Bind(new(apporder.Replenisher), new(*apppurchase.ReplenishUseCase)),
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	provideCartCache,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewCartHandler,
	handler.NewOrderHandler,
	handler.NewPurchaseHandler,
)

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideCartCache 从Redis客户端创建购物车缓存
func provideCartCache(client *goredis.Client) *redis.CartCache {
	return redis.NewCartCache(client)
}

// provideReplenishConfig 从配置提取补货参数
func provideReplenishConfig(cfg *config.Config) config.ReplenishConfig {
	return cfg.Replenish
}

// provideEventBus 创建事件总线
// MQ未开启或连接失败时降级为no-op,不影响核心流程
func provideEventBus(cfg *config.Config) eventbus.Publisher {
	if !cfg.MQ.Enabled {
		return eventbus.NewNop()
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		log.Printf("⚠️ 连接RabbitMQ失败,事件发布降级为no-op: %v", err)
		return eventbus.NewNop()
	}
	return eventbus.New(publisher, cfg.MQ.Exchange)
}

// provideGinEngine 创建并配置Gin引擎
// 路由注册复用main.go中的registerRoutes,避免两套路由表漂移
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	purchaseHandler *handler.PurchaseHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())

	registerRoutes(r, userHandler, bookHandler, cartHandler, orderHandler, purchaseHandler, authMiddleware)

	return r
}

// InitializeApp 初始化整个应用
// Wire会在wire_gen.go中生成实际的初始化代码,这里的返回值是占位符
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideReplenishConfig,
		provideEventBus,
		provideGinEngine,
	)

	return nil, nil
}
