package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookstore-ledger/internal/application/catalog"
	apperrors "github.com/xiebiao/bookstore-ledger/pkg/errors"
)

const (
	snapshotKeyPrefix  = "ledger:book:"
	defaultSnapshotTTL = 5 * time.Minute
)

// SnapshotStore 图书快照缓存
// 设计说明:
// 1. Key设计:ledger:book:{isbn},值为JSON
// 2. 写入带TTL,即使漏删缓存,过期后也会自动修正
// 3. 数据变更时整键删除(Cache-Aside),不做原地更新
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ catalog.SnapshotCache = (*SnapshotStore)(nil)

// NewSnapshotStore 创建快照缓存
func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &SnapshotStore{client: client, ttl: ttl}
}

func snapshotKey(isbn string) string {
	return snapshotKeyPrefix + isbn
}

// Get 读取快照,未命中返回(nil, nil)
func (s *SnapshotStore) Get(ctx context.Context, isbn string) (*catalog.BookSnapshot, error) {
	raw, err := s.client.Get(ctx, snapshotKey(isbn)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.WithCode(err, apperrors.ErrCodeRedisError, "读取快照失败")
	}

	var snapshot catalog.BookSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		// 格式不对的旧数据按未命中处理,顺手删掉
		_ = s.client.Del(ctx, snapshotKey(isbn)).Err()
		return nil, nil
	}
	return &snapshot, nil
}

// Set 写入快照
func (s *SnapshotStore) Set(ctx context.Context, snapshot *catalog.BookSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return apperrors.Wrap(err, "序列化快照失败")
	}
	if err := s.client.Set(ctx, snapshotKey(snapshot.ISBN), raw, s.ttl).Err(); err != nil {
		return apperrors.WithCode(err, apperrors.ErrCodeRedisError, "写入快照失败")
	}
	return nil
}

// Invalidate 删除一本或多本书的快照(一次DEL)
func (s *SnapshotStore) Invalidate(ctx context.Context, isbns ...string) error {
	if len(isbns) == 0 {
		return nil
	}
	keys := make([]string, 0, len(isbns))
	for _, isbn := range isbns {
		keys = append(keys, snapshotKey(isbn))
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return apperrors.WithCode(err, apperrors.ErrCodeRedisError, "删除快照失败")
	}
	return nil
}
