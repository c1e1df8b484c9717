package cache

import (
	"context"
	"encoding/json"
	"path"
	"strings"
	"sync"
	"time"
)

// MemoryCache is an in-process CacheService used when no Redis URL is configured
// and in tests. It records every purged namespace.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	purges  []string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

// TTL is ignored.
func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	data, ok := m.entries[key]
	m.mu.Unlock()
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) DeletePattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *MemoryCache) Purge(ctx context.Context, namespace string) error {
	m.mu.Lock()
	m.purges = append(m.purges, namespace)
	m.mu.Unlock()
	return m.DeletePattern(ctx, NamespaceKey(namespace, "*"))
}

// Purges returns the namespaces purged so far, in order.
func (m *MemoryCache) Purges() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.purges...)
}

// Len counts entries whose key starts with prefix.
func (m *MemoryCache) Len(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			n++
		}
	}
	return n
}
