package order

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
	"github.com/xiebiao/bookstore-ledger/pkg/metrics"
)

// Options 下单事务参数
type Options struct {
	TxTimeout      time.Duration // 单次尝试的超时时间
	MaxRetries     int           // 并发冲突最多重试几次(0表示不重试)
	RetryBaseDelay time.Duration // 第一次重试前的等待时间,之后指数增长
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		TxTimeout:      5 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: 20 * time.Millisecond,
	}
}

// retryer 冲突重试
//
// 教学要点:
//  1. 只有ConcurrencyConflict(死锁、锁等待超时)值得重试,其他错误重试也不会变
//  2. 每次重试都从头执行整个事务,而不是只重放失败的那一步
//  3. 指数退避 + 随机抖动,避免冲突的两个请求再次同时撞上
type retryer struct {
	opts   Options
	logger *zap.Logger
}

func (r retryer) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.opts.RetryBaseDelay
	exp.MaxInterval = 20 * r.opts.RetryBaseDelay
	exp.MaxElapsedTime = 0 // 次数由MaxRetries控制
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.opts.MaxRetries)), ctx)
}

// do 执行op,每次尝试单独计时
func (r retryer) do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := r.attempt(ctx, op)
		if err == nil {
			return nil
		}
		if apperrors.IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		metrics.IncCounter(metrics.TxConflictRetriesTotal)
		r.logger.Warn("事务冲突,准备重试",
			zap.String("operation", name),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
	return backoff.RetryNotify(operation, r.backOff(ctx), notify)
}

// attempt 单次尝试
// 超时统一转换为ErrTimeout:事务已经回滚,补偿已经执行
func (r retryer) attempt(ctx context.Context, op func(ctx context.Context) error) error {
	if r.opts.TxTimeout <= 0 {
		return op(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, r.opts.TxTimeout)
	defer cancel()

	err := op(attemptCtx)
	if err == nil {
		return nil
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return apperrors.WithCode(err, apperrors.ErrCodeTimeout, "事务执行超时")
	}
	return err
}
