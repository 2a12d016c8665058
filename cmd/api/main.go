// @title           Bookstore Ledger API
// @version         1.0
// @description     图书价格/库存账本与下单事务服务
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	appaddress "github.com/xiebiao/bookstore-ledger/internal/application/address"
	"github.com/xiebiao/bookstore-ledger/internal/application/catalog"
	apporder "github.com/xiebiao/bookstore-ledger/internal/application/order"
	"github.com/xiebiao/bookstore-ledger/internal/domain/address"
	"github.com/xiebiao/bookstore-ledger/internal/domain/inventory"
	"github.com/xiebiao/bookstore-ledger/internal/domain/price"
	"github.com/xiebiao/bookstore-ledger/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-ledger/internal/infrastructure/persistence/sqlstore"
	"github.com/xiebiao/bookstore-ledger/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-ledger/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-ledger/internal/interface/http/router"
	"github.com/xiebiao/bookstore-ledger/internal/interface/rpc"
	"github.com/xiebiao/bookstore-ledger/pkg/tracing"

	_ "github.com/xiebiao/bookstore-ledger/docs" // swagger文档
)

// main 主程序入口
// 启动顺序:配置 → 日志 → 追踪 → 依赖组装 → HTTP/gRPC服务
// 收到SIGINT/SIGTERM后优雅关闭:停止接收新请求,等待处理中的请求完成
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	app, cleanup, err := newApp(cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	defer cleanup()

	if err := run(app); err != nil {
		app.Logger.Error("服务异常退出", zap.Error(err))
	}
}

// newApp 手动依赖注入
// 与wire.go里的initializeApp组装结果一致
func newApp(cfg *config.Config) (*App, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*App, func(), error) {
		cleanup()
		return nil, nil, err
	}

	logger, closeLogger, err := provideLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanups = append(cleanups, closeLogger)

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(tracing.Config{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			return fail(fmt.Errorf("初始化追踪失败: %w", err))
		}
		cleanups = append(cleanups, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		})
	}

	// 1. 基础设施
	db, closeDB, err := provideDB(cfg, logger)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeDB)

	cache, closeCache, err := provideSnapshotCache(cfg, logger)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeCache)

	events, closeEvents, err := provideEventPublisher(cfg, logger)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeEvents)

	// 2. 仓储
	tx := provideTransactor(db)
	books := sqlstore.NewBookRepository(db)
	prices := sqlstore.NewPriceRepository(db)
	invRepo := sqlstore.NewInventoryRepository(db)
	addrRepo := sqlstore.NewAddressRepository(db)
	orders := sqlstore.NewOrderRepository(db)

	// 3. 领域服务
	priceLedger := price.NewLedger(prices, books, tx, logger)
	invLedger := inventory.NewLedger(invRepo, tx, logger)
	guard := address.NewOwnershipGuard(addrRepo)

	// 4. 用例
	opts := provideOrderOptions(cfg)
	snapshots := provideSnapshotInvalidator(cache)
	cancelOrder := apporder.NewCancelOrderUseCase(orders, invLedger, tx, events, snapshots, opts, logger)

	// 5. Handler
	health, err := provideHealthHandler(db)
	if err != nil {
		return fail(err)
	}
	handlers := router.Handlers{
		Catalog: handler.NewCatalogHandler(
			catalog.NewPublishBookUseCase(books, priceLedger, invRepo, tx, cache, logger),
			catalog.NewGetBookUseCase(books, priceLedger, invLedger, cache, logger),
			catalog.NewSetPriceUseCase(priceLedger, cache, logger),
			catalog.NewPriceHistoryUseCase(priceLedger),
			catalog.NewRestockUseCase(invLedger, cache, logger),
			catalog.NewInventoryLogsUseCase(invLedger),
		),
		Address: handler.NewAddressHandler(
			appaddress.NewCreateAddressUseCase(addrRepo, tx, logger),
			appaddress.NewListAddressesUseCase(addrRepo),
		),
		Order: handler.NewOrderHandler(
			apporder.NewCreateOrderUseCase(orders, guard, priceLedger, invLedger, tx, events, snapshots, opts, logger),
			apporder.NewGetOrderUseCase(orders),
			apporder.NewListOrdersUseCase(orders),
			apporder.NewUpdateAddressesUseCase(orders, guard, tx, logger),
			apporder.NewChangeStatusUseCase(orders, cancelOrder, tx, logger),
		),
		Health: health,
	}

	auth := middleware.NewAuthMiddleware(provideTokenParser(provideJWTManager(cfg)))
	engine, err := provideGinEngine(cfg, handlers, auth, logger)
	if err != nil {
		return fail(err)
	}

	reporter, err := provideHealthReporter(db, logger)
	if err != nil {
		return fail(err)
	}

	return &App{
		Config: cfg,
		Logger: logger,
		Engine: engine,
		GRPC:   rpc.NewServer(reporter),
		Health: reporter,
	}, cleanup, nil
}

// run 用errgroup同时运行HTTP和gRPC服务,任何一个失败都会触发整体退出
func run(app *App) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := app.Config
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info("HTTP服务启动", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP服务失败: %w", err)
		}
		return nil
	})

	if cfg.Server.GRPCPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
		if err != nil {
			return fmt.Errorf("监听gRPC端口失败: %w", err)
		}
		g.Go(func() error {
			app.Logger.Info("gRPC健康检查启动", zap.String("addr", lis.Addr().String()))
			return app.GRPC.Serve(lis)
		})
		g.Go(func() error {
			app.Health.Run(gctx)
			return nil
		})
	}

	// 收到信号(或某个服务失败)后开始优雅关闭
	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info("开始优雅关闭")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		app.GRPC.GracefulStop()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
