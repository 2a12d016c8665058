// Package saga 实现"可补偿步骤"编排
//
// 核心思想：
// 1. 一个业务操作拆成若干步骤,每个步骤带一个补偿操作
// 2. 某一步失败时,按逆序执行已完成步骤的补偿
// 3. 与数据库事务配合使用:补偿先把业务状态恢复,随后事务回滚兜底
//
// 教学要点：
// - 补偿必须针对"本步骤自己的结果",不能依赖后续步骤
// - 补偿使用不可取消的Context,避免调用方超时导致补偿被跳过
// - 补偿失败只记录日志,继续补偿其余步骤(尽最大努力)
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Step 表示Saga中的一个步骤
type Step struct {
	Name       string                          // 步骤名称（用于日志和调试）
	Action     func(ctx context.Context) error // 正向操作
	Compensate func(ctx context.Context) error // 补偿操作,可为nil
}

// Saga 表示一组按顺序执行的可补偿步骤
// 非并发安全:一个Saga只在一个goroutine内执行
type Saga struct {
	steps    []Step
	executed []Step
	timeout  time.Duration
	logger   *zap.Logger

	// onCompensate 每执行一次补偿回调一次(用于指标)
	onCompensate func(step string, err error)
}

// Option Saga配置项
type Option func(*Saga)

// WithLogger 指定日志
func WithLogger(logger *zap.Logger) Option {
	return func(s *Saga) {
		s.logger = logger
	}
}

// WithCompensateHook 补偿回调
func WithCompensateHook(fn func(step string, err error)) Option {
	return func(s *Saga) {
		s.onCompensate = fn
	}
}

// NewSaga 创建一个新的Saga
//
// 示例：
//
//	s := saga.NewSaga(0, saga.WithLogger(logger))
//	s.AddStep("reserve 9780132350884", reserve, release)
//	err := s.Execute(txCtx)
func NewSaga(timeout time.Duration, opts ...Option) *Saga {
	s := &Saga{
		steps:   make([]Step, 0),
		timeout: timeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddStep 添加一个步骤(按添加顺序执行,按逆序补偿)
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Len 步骤数量
func (s *Saga) Len() int {
	return len(s.steps)
}

// Execute 依次执行所有步骤
//
// 返回值:
// - 成功返回nil
// - 某步失败时先补偿,再原样返回该步骤的错误(errors.Is/As可穿透)
// - 超时返回包装了context.DeadlineExceeded的错误
func (s *Saga) Execute(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.executed = s.executed[:0]
	for _, step := range s.steps {
		if err := ctx.Err(); err != nil {
			s.compensate(ctx)
			return fmt.Errorf("saga中止于步骤[%s]: %w", step.Name, err)
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.compensate(ctx)
				return err
			}
		}

		s.executed = append(s.executed, step)
	}

	return nil
}

// compensate 逆序执行已完成步骤的补偿
// 教学要点:context.WithoutCancel保留ctx里的值(例如事务DB),但去掉取消信号
func (s *Saga) compensate(ctx context.Context) {
	cctx := context.WithoutCancel(ctx)

	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}

		err := step.Compensate(cctx)
		if err != nil {
			s.logger.Error("补偿失败",
				zap.String("step", step.Name),
				zap.Error(err),
			)
		}
		if s.onCompensate != nil {
			s.onCompensate(step.Name, err)
		}
	}

	s.executed = s.executed[:0]
}

// IsTimeout 判断Execute返回的错误是否因超时
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
