package store

import (
	"context"
	"fmt"
	"time"

	"DocRAG/backend/go/internal/config"
	"DocRAG/backend/go/internal/crew"
	"DocRAG/backend/go/internal/database/redis"
	"DocRAG/backend/go/pkg/util"
)

// Store 是对话记忆的存储后端，按时间从旧到新返回最近的若干轮。
type Store interface {
	crew.Memory
}

// Open 按配置创建记忆后端。未启用时返回 nil，流水线将不注入历史。
func Open(ctx context.Context, cfg config.MemoryConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	switch cfg.Backend {
	case "", "inmemory":
		return NewInMemory(cfg.Capacity, ttl)
	case "redis":
		client, err := redis.GetClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Redis.Key, cfg.Capacity, ttl)
	default:
		return nil, fmt.Errorf("unsupported memory backend %q", cfg.Backend)
	}
}

// InMemory 把最近 N 轮保存在进程内的 LRU 中，进程重启即丢失。
type InMemory struct {
	turns *util.LRUCache[string, crew.Turn]
}

// NewInMemory 创建容量为 capacity 的进程内记忆，ttl 为 0 表示不过期。
func NewInMemory(capacity int, ttl time.Duration) (*InMemory, error) {
	cache, err := util.NewWithConfig[string, crew.Turn](util.CacheConfig{Capacity: capacity, TTL: ttl})
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &InMemory{turns: cache}, nil
}
