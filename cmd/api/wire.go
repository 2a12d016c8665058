//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明:
// 1. Wire在编译期生成组装代码,零运行时开销
// 2. main.go里的newApp是同一张依赖图的手写版本,改Provider时两边一起改
//
// 生成:wire gen ./cmd/api

package main

import (
	"github.com/google/wire"

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
)

// infrastructureSet 基础设施层依赖:日志、数据库、缓存、消息
var infrastructureSet = wire.NewSet(
	provideLogger,
	provideDB,
	provideTransactor,
	provideSnapshotCache,
	provideSnapshotInvalidator,
	provideEventPublisher,
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	sqlstore.NewBookRepository,
	sqlstore.NewPriceRepository,
	sqlstore.NewInventoryRepository,
	sqlstore.NewAddressRepository,
	sqlstore.NewOrderRepository,
)

// domainSet 领域服务:价格账本、库存账本、地址归属校验
var domainSet = wire.NewSet(
	price.NewLedger,
	inventory.NewLedger,
	address.NewOwnershipGuard,
)

// applicationSet 应用层用例
var applicationSet = wire.NewSet(
	provideOrderOptions,
	catalog.NewPublishBookUseCase,
	catalog.NewGetBookUseCase,
	catalog.NewSetPriceUseCase,
	catalog.NewPriceHistoryUseCase,
	catalog.NewRestockUseCase,
	catalog.NewInventoryLogsUseCase,
	appaddress.NewCreateAddressUseCase,
	appaddress.NewListAddressesUseCase,
	apporder.NewCreateOrderUseCase,
	apporder.NewCancelOrderUseCase,
	apporder.NewGetOrderUseCase,
	apporder.NewListOrdersUseCase,
	apporder.NewUpdateAddressesUseCase,
	apporder.NewChangeStatusUseCase,
)

// interfaceSet HTTP/gRPC接口层
var interfaceSet = wire.NewSet(
	provideJWTManager,
	provideTokenParser,
	middleware.NewAuthMiddleware,
	handler.NewCatalogHandler,
	handler.NewAddressHandler,
	handler.NewOrderHandler,
	provideHealthHandler,
	wire.Struct(new(router.Handlers), "*"),
	provideGinEngine,
	provideHealthReporter,
	rpc.NewServer,
	wire.Struct(new(App), "*"),
)

// initializeApp Injector
// 追踪(tracing)是进程级的全局状态,仍由main.go按配置初始化
func initializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
	)
	return nil, nil, nil
}
