package status

import (
	"maps"
	"slices"
	"sync"
)

// MetricMap holds named metrics of type T behind stable pointers
// Writers resolve a key once and keep the pointer; only registration takes the lock
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
}

func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{items: make(map[string]*T)}
}

// Get returns the metric for key, registering a zero value on first use
func (m *MetricMap[T]) Get(key string) *T {
	if ptr, ok := m.Lookup(key); ok {
		return ptr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ptr, ok := m.items[key]; ok {
		return ptr
	}
	ptr := new(T)
	m.items[key] = ptr
	return ptr
}

// Lookup returns the metric for key without registering it
func (m *MetricMap[T]) Lookup(key string) (*T, bool) {
	m.mu.RLock()
	ptr, ok := m.items[key]
	m.mu.RUnlock()
	return ptr, ok
}

// Keys returns the registered names in ascending order
func (m *MetricMap[T]) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.items))
}

// Range visits every metric in key order
// fn must not register new keys on the same map
func (m *MetricMap[T]) Range(fn func(key string, ptr *T)) {
	for _, k := range m.Keys() {
		ptr, _ := m.Lookup(k)
		fn(k, ptr)
	}
}

func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
