// Package logger 基于zap的结构化日志
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 日志配置
// 与config.LogConfig字段一一对应,pkg层不直接依赖internal配置
type Options struct {
	Level        string // debug | info | warn | error
	Format       string // console | json
	Output       string // stdout | stderr | /path/to/file
	EnableCaller bool
}

// New 根据配置创建*zap.Logger
// 教学要点:
// 1. json格式用于生产环境(方便ELK/Loki检索),console格式用于本地开发
// 2. 时间统一ISO8601,字段名统一timestamp
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(defaultString(opts.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", opts.Level, err)
	}

	var cfg zap.Config
	switch strings.ToLower(opts.Format) {
	case "json":
		cfg = zap.NewProductionConfig()
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("无效的日志格式: %s", opts.Format)
	}

	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = !opts.EnableCaller

	output := defaultString(opts.Output, "stdout")
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// MustNew New的panic版本,只在main中使用
func MustNew(opts Options) *zap.Logger {
	l, err := New(opts)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return l
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
