// Package registry provides insert-once key/value registries.
//
// Registry is a plain mapping. Subclass extends it with type-aware lookups: a
// value registered for a type also answers queries for instances of that
// type, for its registered subtypes and for its dotted path.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	// ErrDuplicateKey is returned by Add when the key is already bound.
	ErrDuplicateKey = errors.New("registry: duplicate key")
	// ErrUnhashableKey is returned by Add for keys that cannot be map keys.
	ErrUnhashableKey = errors.New("registry: unhashable key")
)

// Registry maps keys to values. Each key may be bound once.
// It is safe for concurrent use.
//
//	r := registry.New[int]()
//	_ = r.Add("foo", 42)
//	v, ok := r.Get("foo") // 42, true
type Registry[V any] struct {
	mu    sync.RWMutex
	data  map[any]V
	order []any
}

// New returns an empty registry.
func New[V any]() *Registry[V] {
	return &Registry[V]{data: make(map[any]V)}
}

// Add binds value under key. It fails with ErrDuplicateKey if key is already
// bound; the existing binding is kept.
func (r *Registry[V]) Add(key any, value V) error {
	if !hashable(key) {
		return fmt.Errorf("%w: %T", ErrUnhashableKey, key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[key]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, key)
	}
	r.data[key] = value
	r.order = append(r.order, key)
	return nil
}

// Register returns a function that binds its argument under key and returns
// it unchanged, so registration can sit next to the definition:
//
//	var encodePoint = encoders.Register(reflect.TypeFor[Point]())(jsoner.EncodeFunc(...))
//
// The returned function panics if key is already bound.
func (r *Registry[V]) Register(key any) func(V) V {
	return func(v V) V {
		if err := r.Add(key, v); err != nil {
			panic(err)
		}
		return v
	}
}

// Get returns the value bound to key. ok is false when nothing is bound.
func (r *Registry[V]) Get(key any) (V, bool) {
	return r.lookup(key)
}

// Contains reports whether Get would succeed for key.
func (r *Registry[V]) Contains(key any) bool {
	_, ok := r.Get(key)
	return ok
}

// Delete removes the binding for key and reports whether one existed.
func (r *Registry[V]) Delete(key any) bool {
	if !hashable(key) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[key]; !ok {
		return false
	}
	delete(r.data, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of stored bindings.
func (r *Registry[V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// Keys returns the stored keys in registration order.
func (r *Registry[V]) Keys() []any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]any, len(r.order))
	copy(out, r.order)
	return out
}

// Reset removes all bindings.
func (r *Registry[V]) Reset() {
	r.mu.Lock()
	r.data = make(map[any]V)
	r.order = nil
	r.mu.Unlock()
}

func (r *Registry[V]) lookup(key any) (V, bool) {
	var zero V
	if !hashable(key) {
		return zero, false
	}
	r.mu.RLock()
	v, ok := r.data[key]
	r.mu.RUnlock()
	return v, ok
}

// hashable reports whether key can be used as a map key without panicking.
func hashable(key any) bool {
	if key == nil {
		return true
	}
	return reflect.ValueOf(key).Comparable()
}
