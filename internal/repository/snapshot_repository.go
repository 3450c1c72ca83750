// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// snapshotTTL 是中继缓存条目的保留时间。快照每次页面加载都会被覆盖，
// 过期只是兜底清理，不承担业务语义。
const snapshotTTL = 7 * 24 * time.Hour

// SnapshotRepository 是消息中继本地存储的 Redis 实现。
// 它满足 relay.Store 的结构化接口：一个简单的字符串 KV。
type SnapshotRepository struct {
	redisClient *redis.Client
}

// NewSnapshotRepository 创建一个新的 SnapshotRepository 实例。
func NewSnapshotRepository(redisClient *redis.Client) *SnapshotRepository {
	return &SnapshotRepository{redisClient: redisClient}
}

func (r *SnapshotRepository) key(k string) string {
	return fmt.Sprintf("relay:%s", k)
}

// Get 读取指定键的值。键不存在时返回 ok=false 而不是错误。
func (r *SnapshotRepository) Get(ctx context.Context, k string) (string, bool, error) {
	val, err := r.redisClient.Get(ctx, r.key(k)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get relay key %s: %w", k, err)
	}
	return val, true, nil
}

// Set 覆盖写入指定键的值。
func (r *SnapshotRepository) Set(ctx context.Context, k, v string) error {
	if err := r.redisClient.Set(ctx, r.key(k), v, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to set relay key %s: %w", k, err)
	}
	return nil
}
