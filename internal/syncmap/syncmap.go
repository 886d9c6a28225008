// Package syncmap provides a type-safe concurrent map.
package syncmap

import (
	"sort"
	"strings"
	"sync"
)

// Map is a type-safe concurrent map guarded by a RWMutex. It suits
// read-heavy workloads with infrequent writes better than sync.Map.
type Map[K comparable, V any] struct {
	m  map[K]V
	mu sync.RWMutex
}

// New creates an empty map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{m: make(map[K]V)}
}

// Load returns the value stored for key and whether it was present.
func (sm *Map[K, V]) Load(key K) (value V, ok bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	value, ok = sm.m[key]
	return
}

// Store sets the value for a key.
func (sm *Map[K, V]) Store(key K, value V) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.m[key] = value
}

// LoadOrStore returns the existing value for the key if present.
// Otherwise, it stores and returns the given value.
func (sm *Map[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if actual, loaded = sm.m[key]; loaded {
		return actual, true
	}
	sm.m[key] = value
	return value, false
}

// Delete deletes the value for a key.
func (sm *Map[K, V]) Delete(key K) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.m, key)
}

// Len returns the number of items in the map.
func (sm *Map[K, V]) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.m)
}

// Range calls fn for each entry until fn returns false. The map is read
// locked for the duration, so fn must not write to it.
func (sm *Map[K, V]) Range(fn func(K, V) bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for k, v := range sm.m {
		if !fn(k, v) {
			return
		}
	}
}

// KeysWithPrefix returns the sorted string keys that start with prefix.
func KeysWithPrefix[V any](sm *Map[string, V], prefix string) []string {
	var keys []string
	sm.Range(func(k string, _ V) bool {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
		return true
	})
	sort.Strings(keys)
	return keys
}
