package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"gorm.io/gorm"

	"github.com/xiebiao/bookstore-ledger/internal/application/catalog"
	apporder "github.com/xiebiao/bookstore-ledger/internal/application/order"
	"github.com/xiebiao/bookstore-ledger/internal/domain/shared"
	"github.com/xiebiao/bookstore-ledger/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-ledger/internal/infrastructure/messaging"
	"github.com/xiebiao/bookstore-ledger/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookstore-ledger/internal/infrastructure/persistence/sqlstore"
	"github.com/xiebiao/bookstore-ledger/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-ledger/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-ledger/internal/interface/http/router"
	"github.com/xiebiao/bookstore-ledger/internal/interface/rpc"
	"github.com/xiebiao/bookstore-ledger/pkg/jwt"
	"github.com/xiebiao/bookstore-ledger/pkg/logger"
	"github.com/xiebiao/bookstore-ledger/pkg/mq"
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================
// main.go手动组装和wire.go共用这些函数。
// 返回func()的Provider同时返回清理函数,Wire会按依赖的逆序调用

// App 进程内的顶层对象
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Engine *gin.Engine
	GRPC   *grpc.Server
	Health *rpc.HealthReporter
}

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	l, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		return nil, nil, err
	}
	return l, func() { _ = l.Sync() }, nil
}

func provideDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := sqlstore.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

func provideTransactor(db *gorm.DB) shared.Transactor {
	return sqlstore.NewTxManager(db)
}

// provideSnapshotCache 启用Redis时使用Redis快照缓存,否则不缓存
func provideSnapshotCache(cfg *config.Config, log *zap.Logger) (catalog.SnapshotCache, func(), error) {
	if !cfg.Redis.Enabled {
		log.Info("未启用Redis,图书快照不缓存")
		return catalog.NopSnapshotCache{}, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return redis.NewSnapshotStore(client, cfg.Redis.SnapshotTTL), func() { _ = client.Close() }, nil
}

// provideSnapshotInvalidator 订单用例只需要失效能力
func provideSnapshotInvalidator(cache catalog.SnapshotCache) apporder.SnapshotInvalidator {
	return cache
}

// provideEventPublisher 启用MQ时发布到RabbitMQ(带熔断),否则丢弃事件
func provideEventPublisher(cfg *config.Config, log *zap.Logger) (apporder.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		log.Info("未启用消息队列,订单事件不发布")
		return apporder.NopEventPublisher{}, func() {}, nil
	}
	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, messaging.ExchangeType, log)
	if err != nil {
		return nil, nil, err
	}
	return messaging.NewEventPublisher(pub, 2*time.Second, log), func() { _ = pub.Close() }, nil
}

func provideOrderOptions(cfg *config.Config) apporder.Options {
	opts := apporder.DefaultOptions()
	if cfg.Order.TxTimeout > 0 {
		opts.TxTimeout = cfg.Order.TxTimeout
	}
	if cfg.Order.MaxRetries > 0 {
		opts.MaxRetries = cfg.Order.MaxRetries
	}
	if cfg.Order.RetryBaseDelay > 0 {
		opts.RetryBaseDelay = cfg.Order.RetryBaseDelay
	}
	return opts
}

// provideJWTManager 从配置创建JWT管理器
// 教学要点:config.Config包含多个字段,但jwt.NewManager只需要JWT相关的配置,
// Wire无法自动知道如何从Config提取参数,所以需要手动编写Provider
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

func provideTokenParser(m *jwt.Manager) middleware.TokenParser {
	return m
}

func provideHealthHandler(db *gorm.DB) (*handler.HealthHandler, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return handler.NewHealthHandler(map[string]handler.Pinger{"database": sqlDB}), nil
}

func provideHealthReporter(db *gorm.DB, log *zap.Logger) (*rpc.HealthReporter, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return rpc.NewHealthReporter(sqlDB, 5*time.Second, log), nil
}

func provideGinEngine(cfg *config.Config, h router.Handlers, auth *middleware.AuthMiddleware, log *zap.Logger) (*gin.Engine, error) {
	return router.New(router.Options{
		Mode:    cfg.Server.Mode,
		Swagger: cfg.Server.Mode != gin.ReleaseMode,
	}, h, auth, log)
}
