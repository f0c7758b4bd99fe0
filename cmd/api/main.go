package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/bookmall/docs"
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
	"github.com/xiebiao/bookmall/pkg/metrics"
	"github.com/xiebiao/bookmall/pkg/mq"
	"github.com/xiebiao/bookmall/pkg/response"
	"github.com/xiebiao/bookmall/pkg/tracing"
)

// @title           BookMall API
// @version         1.0
// @description     网上书店后端:图书、购物车、订单与自动补货
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// main 主程序入口
// 说明：手动依赖注入（与wire.go中的Provider声明保持一致）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())
	fmt.Printf("  - 补货窗口: %s (倍率x%d)\n", cfg.Replenish.Window, cfg.Replenish.RestockFactor)

	// 2. 初始化可观测性组件
	metrics.InitMetrics()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorURL)
		if err != nil {
			log.Fatalf("初始化Tracer失败: %v", err)
		}
		defer func() { _ = shutdown(context.Background()) }()
		fmt.Printf("✓ 链路追踪已开启: %s\n", cfg.Tracing.CollectorURL)
	}

	// 3. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 4. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 5. 初始化事件总线
	// MQ不可用不阻塞启动:事件发布是尽力而为,核心下单流程不依赖它
	events := eventbus.NewNop()
	if cfg.MQ.Enabled {
		publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Printf("⚠️ 连接RabbitMQ失败,事件发布降级为no-op: %v", err)
		} else {
			events = eventbus.New(publisher, cfg.MQ.Exchange)
			fmt.Printf("✓ 事件总线已开启: exchange=%s\n", cfg.MQ.Exchange)
		}
	}
	defer func() { _ = events.Close() }()

	// 6. 依赖注入（手动组装）
	// 学习要点：依赖注入链
	// Repository/Ledger ← Service ← UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	purchaseRepo := mysql.NewPurchaseRepository(db)
	stockLedger := mysql.NewStockLedger(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	cartCache := redis.NewCartCache(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)

	publishBookUseCase := appbook.NewPublishBookUseCase(bookService)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService)

	addItemUseCase := appcart.NewAddItemUseCase(cartRepo, bookRepo, cartCache)
	updateItemUseCase := appcart.NewUpdateItemUseCase(cartRepo, cartCache)
	removeItemUseCase := appcart.NewRemoveItemUseCase(cartRepo, cartCache)
	getCartUseCase := appcart.NewGetCartUseCase(cartRepo, bookRepo, cartCache)

	// 补货引擎:结账扣库存后由它决定是否开采购单
	replenishUseCase := apppurchase.NewReplenishUseCase(bookRepo, purchaseRepo, txManager, cfg.Replenish, events)

	checkoutUseCase := apporder.NewCheckoutUseCase(cartRepo, bookRepo, orderRepo, stockLedger, txManager, replenishUseCase, events)
	listOrdersUseCase := apporder.NewListOrdersUseCase(orderRepo)
	getOrderUseCase := apporder.NewGetOrderUseCase(orderRepo)
	cancelOrderUseCase := apporder.NewCancelOrderUseCase(orderRepo, stockLedger, txManager, events)
	updateStatusUseCase := apporder.NewUpdateStatusUseCase(orderRepo)

	listPurchaseUseCase := apppurchase.NewListPurchaseOrdersUseCase(purchaseRepo)
	confirmPurchaseUseCase := apppurchase.NewConfirmUseCase(purchaseRepo, stockLedger, txManager, events)
	cancelPurchaseUseCase := apppurchase.NewCancelUseCase(purchaseRepo, txManager, events)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase)
	bookHandler := handler.NewBookHandler(publishBookUseCase, listBooksUseCase, bookService)
	cartHandler := handler.NewCartHandler(addItemUseCase, updateItemUseCase, removeItemUseCase, getCartUseCase)
	orderHandler := handler.NewOrderHandler(checkoutUseCase, listOrdersUseCase, getOrderUseCase, cancelOrderUseCase, updateStatusUseCase)
	purchaseHandler := handler.NewPurchaseHandler(listPurchaseUseCase, confirmPurchaseUseCase, cancelPurchaseUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 7. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())

	// 8. 注册路由
	registerRoutes(r, userHandler, bookHandler, cartHandler, orderHandler, purchaseHandler, authMiddleware)

	// 9. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   API文档:  http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("   监控指标: http://localhost%s/metrics\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	purchaseHandler *handler.PurchaseHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 用户模块（公开接口，不需要登录）
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 图书模块
		books := v1.Group("/books")
		{
			// 浏览图书是公开接口
			books.GET("", bookHandler.ListBooks)
			books.GET("/:id", bookHandler.GetBook)

			// 上架需要登录
			books.POST("", authMiddleware.RequireAuth(), bookHandler.PublishBook)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(authMiddleware.RequireAuth())
		{
			// 个人信息
			authorized.GET("/profile", userHandler.GetProfile)

			// 购物车模块
			cart := authorized.Group("/cart")
			{
				cart.GET("", cartHandler.GetCart)
				cart.POST("/items", cartHandler.AddItem)
				cart.PUT("/items/:isbn", cartHandler.UpdateItem)
				cart.DELETE("/items/:isbn", cartHandler.RemoveItem)
			}

			// 结账:购物车→订单
			authorized.POST("/checkout", orderHandler.Checkout)

			// 订单模块
			orders := authorized.Group("/orders")
			{
				orders.GET("", orderHandler.ListOrders)
				orders.GET("/:id", orderHandler.GetOrder)
				orders.POST("/:id/cancel", orderHandler.CancelOrder)

				// 状态流转仅管理员可用
				orders.PUT("/:id/status", authMiddleware.RequireAdmin(), orderHandler.UpdateStatus)
			}
		}

		// 采购模块（管理员）
		purchases := v1.Group("/purchase-orders")
		purchases.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
		{
			purchases.GET("", purchaseHandler.List)
			purchases.POST("/:id/confirm", purchaseHandler.Confirm)
			purchases.POST("/:id/cancel", purchaseHandler.Cancel)
		}
	}
}
