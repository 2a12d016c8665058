// Package rpc 对外的gRPC端点。本服务只暴露标准健康检查(grpc.health.v1),
// 供负载均衡和k8s探针使用,状态跟随数据库连通性
package rpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName 健康检查中使用的服务名
const ServiceName = "bookstore.ledger.v1.Ledger"

// Pinger 被探测的依赖
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthReporter 定时探测依赖并更新健康状态
//
// 教学要点:
// 1. 空服务名""代表整个进程,ServiceName代表业务服务,两者同步更新
// 2. 状态变化时才打日志,避免每个周期刷屏
type HealthReporter struct {
	server   *health.Server
	db       Pinger
	interval time.Duration
	logger   *zap.Logger

	serving bool
}

// NewHealthReporter 创建健康状态上报器,初始状态为NOT_SERVING
func NewHealthReporter(db Pinger, interval time.Duration, logger *zap.Logger) *HealthReporter {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthReporter{server: hs, db: db, interval: interval, logger: logger}
}

// Check 探测一次并更新状态
func (r *HealthReporter) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()

	err := r.db.PingContext(ctx)
	serving := err == nil
	if serving != r.serving {
		if serving {
			r.logger.Info("依赖恢复,gRPC健康状态=SERVING")
		} else {
			r.logger.Warn("数据库不可达,gRPC健康状态=NOT_SERVING", zap.Error(err))
		}
	}
	r.serving = serving

	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	r.server.SetServingStatus("", status)
	r.server.SetServingStatus(ServiceName, status)
}

// Run 周期性探测,直到ctx取消;退出前把状态置为NOT_SERVING
func (r *HealthReporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			r.server.Shutdown()
			return
		case <-ticker.C:
			r.Check(ctx)
		}
	}
}

// NewServer 创建gRPC服务器并注册健康检查和反射服务(方便grpcurl调试)
func NewServer(reporter *HealthReporter) *grpc.Server {
	s := grpc.NewServer(
		grpc.MaxRecvMsgSize(4*1024*1024),
		grpc.ConnectionTimeout(10*time.Second),
	)
	healthpb.RegisterHealthServer(s, reporter.server)
	reflection.Register(s)
	return s
}
