package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// MemoryRedis is a map-backed stand-in for the redis commands the order
// cache issues. Expirations are recorded, never enforced.
type MemoryRedis struct {
	mu   sync.Mutex
	data map[string]string
	TTLs map[string]time.Duration
}

func NewMemoryRedis() *MemoryRedis {
	return &MemoryRedis{data: map[string]string{}, TTLs: map[string]time.Duration{}}
}

func (m *MemoryRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *MemoryRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = asString(value)
	m.TTLs[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *MemoryRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = asString(value)
	m.TTLs[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (m *MemoryRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			delete(m.TTLs, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

// Value returns the raw stored string.
func (m *MemoryRedis) Value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
