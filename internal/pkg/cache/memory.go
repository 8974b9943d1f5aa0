package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

type memoryCache struct {
	mu          sync.Mutex
	items       map[string]entry
	serviceName string
	now         func() time.Time
}

// NewMemoryCache returns a process-local Cache for runs without redis.
func NewMemoryCache(serviceName string) Cache {
	return &memoryCache{items: make(map[string]entry), serviceName: serviceName, now: time.Now}
}

func (m *memoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = m.newEntry(value, ttl)
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[key]
	if !ok || e.expired(m.now()) {
		delete(m.items, key)
		return "", nil
	}
	return e.value, nil
}

func (m *memoryCache) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.items[key]; ok && !e.expired(m.now()) {
		return false, nil
	}
	m.items[key] = m.newEntry(value, ttl)
	return true, nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *memoryCache) GenerateKey(operation, key string) string {
	return generateKey(m.serviceName, operation, key)
}

func (m *memoryCache) newEntry(value any, ttl time.Duration) entry {
	e := entry{value: fmt.Sprint(value)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	return e
}
