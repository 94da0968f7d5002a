package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"foodbot/pkg"
)

// ContextStore keeps the one-slot conversational context per user: the
// last parameters plus the place ids already shown.
type ContextStore interface {
	Get(ctx context.Context, userID string) (pkg.ConversationContext, bool, error)
	Put(ctx context.Context, userID string, c pkg.ConversationContext) error
}

// MemoryContextStore is the default store: process lifetime only, no
// eviction. Loss on restart is fine for a one-slot memory.
type MemoryContextStore struct {
	mu       sync.RWMutex
	contexts map[string]pkg.ConversationContext
}

// NewMemoryContextStore creates an empty in-memory store.
func NewMemoryContextStore() *MemoryContextStore {
	return &MemoryContextStore{contexts: make(map[string]pkg.ConversationContext)}
}

func (m *MemoryContextStore) Get(_ context.Context, userID string) (pkg.ConversationContext, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contexts[userID]
	return c, ok, nil
}

func (m *MemoryContextStore) Put(_ context.Context, userID string, c pkg.ConversationContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contexts[userID] = c
	return nil
}

// RedisContextStore keeps contexts in Redis with a TTL, for deployments
// that want the dedup set to survive restarts.
type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisContextStore connects to Redis and verifies the connection.
func NewRedisContextStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisContextStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisContextStore{client: client, ttl: ttl}, nil
}

func contextKey(userID string) string {
	return "context:" + userID
}

func (r *RedisContextStore) Get(ctx context.Context, userID string) (pkg.ConversationContext, bool, error) {
	data, err := r.client.Get(ctx, contextKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return pkg.ConversationContext{}, false, nil
		}
		return pkg.ConversationContext{}, false, fmt.Errorf("failed to load context: %w", err)
	}

	var c pkg.ConversationContext
	if err := sonic.Unmarshal([]byte(data), &c); err != nil {
		return pkg.ConversationContext{}, false, fmt.Errorf("failed to unmarshal context: %w", err)
	}

	// Refresh TTL on read so active conversations stay warm.
	r.client.Expire(ctx, contextKey(userID), r.ttl)
	return c, true, nil
}

func (r *RedisContextStore) Put(ctx context.Context, userID string, c pkg.ConversationContext) error {
	data, err := sonic.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}
	return r.client.Set(ctx, contextKey(userID), data, r.ttl).Err()
}
