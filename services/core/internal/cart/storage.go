package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNoItem = errors.New("cart: no item stored under key")

// Storage is a key-value store with browser-storage semantics.
type Storage interface {
	GetItem(ctx context.Context, key string) ([]byte, error)
	SetItem(ctx context.Context, key string, value []byte) error
	RemoveItem(ctx context.Context, key string) error
}

type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string][]byte)}
}

func (m *MemoryStorage) GetItem(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	if !ok {
		return nil, ErrNoItem
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStorage) SetItem(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.items[key] = v
	return nil
}

func (m *MemoryStorage) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}

// RedisStorage keeps carts in Redis. Each write refreshes the TTL.
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, ttl: ttl}
}

func (r *RedisStorage) GetItem(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoItem
	}
	return v, err
}

func (r *RedisStorage) SetItem(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

func (r *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Prefixed scopes a Storage to one client session, the way each browser
// has its own local storage.
type Prefixed struct {
	Storage
	prefix string
}

func NewPrefixed(s Storage, prefix string) *Prefixed {
	return &Prefixed{Storage: s, prefix: prefix}
}

func (p *Prefixed) GetItem(ctx context.Context, key string) ([]byte, error) {
	return p.Storage.GetItem(ctx, p.prefix+key)
}

func (p *Prefixed) SetItem(ctx context.Context, key string, value []byte) error {
	return p.Storage.SetItem(ctx, p.prefix+key, value)
}

func (p *Prefixed) RemoveItem(ctx context.Context, key string) error {
	return p.Storage.RemoveItem(ctx, p.prefix+key)
}
