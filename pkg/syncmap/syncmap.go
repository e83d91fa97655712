// Package syncmap provides a typed map guarded by a read/write mutex.
package syncmap

import (
	"iter"
	"sync"
)

// Map is a concurrency-safe map. The zero value is not usable; call New.
type Map[K comparable, V comparable] struct {
	m     map[K]V
	mutex sync.RWMutex
}

// New returns an empty Map.
func New[K comparable, V comparable]() *Map[K, V] {
	return &Map[K, V]{m: map[K]V{}}
}

// Load returns the value stored under key.
func (s *Map[K, V]) Load(key K) (V, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	v, found := s.m[key]
	return v, found
}

// Store sets the value for key.
func (s *Map[K, V]) Store(key K, value V) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.m[key] = value
}

// LoadOrStore returns the existing value for key if present. Otherwise it
// stores value and returns it. loaded reports whether the value was present.
func (s *Map[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if v, found := s.m[key]; found {
		return v, true
	}
	s.m[key] = value
	return value, false
}

// LoadAndDelete removes key and returns the value it held, if any.
func (s *Map[K, V]) LoadAndDelete(key K) (V, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	v, found := s.m[key]
	if found {
		delete(s.m, key)
	}
	return v, found
}

// Delete removes key.
func (s *Map[K, V]) Delete(key K) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.m, key)
}

// CompareAndDelete removes key only while it still maps to old.
func (s *Map[K, V]) CompareAndDelete(key K, old V) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if v, found := s.m[key]; found && v == old {
		delete(s.m, key)
		return true
	}
	return false
}

// Len returns the number of entries.
func (s *Map[K, V]) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.m)
}

// Clear removes every entry.
func (s *Map[K, V]) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	clear(s.m)
}

// Values returns a snapshot of the stored values.
func (s *Map[K, V]) Values() []V {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	result := make([]V, 0, len(s.m))
	for _, v := range s.m {
		result = append(result, v)
	}
	return result
}

// Each iterates under the read lock. The callback must not write to the map.
func (s *Map[K, V]) Each() iter.Seq2[K, V] {
	return func(yield func(k K, v V) bool) {
		s.mutex.RLock()
		defer s.mutex.RUnlock()
		for k, v := range s.m {
			if !yield(k, v) {
				return
			}
		}
	}
}
