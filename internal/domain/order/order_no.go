package order

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateOrderNo 生成订单号
// 格式:ORD + 时间戳(毫秒) + 6位随机数,例如 ORD1717228800123456789
// 全局唯一由数据库唯一索引兜底,冲突时整个下单会失败重试
func GenerateOrderNo(now time.Time) string {
	return fmt.Sprintf("ORD%d%06d", now.UnixMilli(), rand.Intn(1000000))
}
