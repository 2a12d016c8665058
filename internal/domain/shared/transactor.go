// Package shared 放置各领域共用的抽象
package shared

import (
	"context"
	"time"
)

// Transactor 事务边界抽象
// 教学要点:
// 1. 领域服务需要"原子地做几件事"时依赖这个接口,而不是依赖gorm
// 2. 实现方把事务放进ctx,fn内部所有仓储调用共享同一个事务
// 3. ctx里已经有事务时直接加入,不开启新事务
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock 时间来源(测试时可以固定时间)
type Clock func() time.Time

// SystemClock 系统时间(UTC,毫秒精度)
// 精度与数据库DATETIME(3)一致,避免写入后读回不相等
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
