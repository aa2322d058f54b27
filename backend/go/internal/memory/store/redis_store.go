package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"DocRAG/backend/go/internal/crew"

	"github.com/go-redis/redis/v8"
)

// RedisStore 用一个 Redis 列表保存最近 N 轮，新记录在表头。
type RedisStore struct {
	client   redis.Cmdable
	key      string
	capacity int
	ttl      time.Duration
}

// NewRedisStore 创建基于 Redis 列表的记忆。ttl 作用于整个列表，每次写入时刷新。
func NewRedisStore(client redis.Cmdable, key string, capacity int, ttl time.Duration) (*RedisStore, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %d", capacity)
	}
	return &RedisStore{client: client, key: key, capacity: capacity, ttl: ttl}, nil
}

func (s *RedisStore) Recent(ctx context.Context) ([]crew.Turn, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, int64(s.capacity-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange %s: %w", s.key, err)
	}
	turns := make([]crew.Turn, 0, len(raw))
	// 列表头是最新的，倒序输出
	for i := len(raw) - 1; i >= 0; i-- {
		var turn crew.Turn
		if err := json.Unmarshal([]byte(raw[i]), &turn); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *RedisStore) Append(ctx context.Context, turn crew.Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("encode turn: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key, data)
	pipe.LTrim(ctx, s.key, 0, int64(s.capacity-1))
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append %s: %w", s.key, err)
	}
	return nil
}
