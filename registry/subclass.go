package registry

import (
	"reflect"
)

// TypeResolver resolves dotted paths to types and lists ancestor chains.
// *types.Table implements it.
type TypeResolver interface {
	ResolveType(path string) (reflect.Type, error)
	Ancestors(rt reflect.Type) []reflect.Type
}

// typeNamer is implemented by *types.Descriptor. Descriptor keys and queries
// stand for their element type.
type typeNamer interface {
	Elem() reflect.Type
	Name() string
}

// Subclass is a Registry whose lookups walk the ancestor chain of the query.
//
// A query may be an instance, a reflect.Type, a descriptor or a dotted path.
// Lookup order:
//  1. the query itself as a stored key (a plain string key stays a plain key);
//  2. a string query is resolved to its type, failing lookups that do not resolve;
//  3. the effective type is the query type or the runtime type of the instance;
//  4. each ancestor of the effective type, most-derived first, is matched
//     against reflect.Type keys, descriptor keys and string keys that resolve.
type Subclass[V any] struct {
	*Registry[V]
	types TypeResolver
}

// NewSubclass returns an empty subclass registry resolving types through tr.
func NewSubclass[V any](tr TypeResolver) *Subclass[V] {
	return &Subclass[V]{Registry: New[V](), types: tr}
}

// Get returns the value registered for query or for its nearest registered
// ancestor. A miss returns ok=false and leaves the registry untouched.
func (s *Subclass[V]) Get(query any) (V, bool) {
	var zero V
	if v, ok := s.Registry.lookup(query); ok {
		return v, true
	}

	rt := s.effectiveType(query)
	if rt == nil {
		return zero, false
	}

	chain := s.types.Ancestors(rt)

	s.Registry.mu.RLock()
	defer s.Registry.mu.RUnlock()

	for _, anc := range chain {
		if v, ok := s.Registry.data[anc]; ok {
			return v, true
		}
		for _, k := range s.Registry.order {
			kt, ok := s.keyType(k)
			if ok && kt == anc {
				return s.Registry.data[k], true
			}
		}
	}
	return zero, false
}

// Contains reports whether Get would succeed for query.
func (s *Subclass[V]) Contains(query any) bool {
	_, ok := s.Get(query)
	return ok
}

func (s *Subclass[V]) effectiveType(query any) reflect.Type {
	switch q := query.(type) {
	case nil:
		return nil
	case string:
		rt, err := s.types.ResolveType(q)
		if err != nil {
			return nil
		}
		return rt
	case reflect.Type:
		return q
	case typeNamer:
		return q.Elem()
	default:
		return reflect.TypeOf(query)
	}
}

// keyType maps a stored key to the type it stands for. Non-pointer
// reflect.Type keys are handled by the direct map probe in Get; pointer keys
// stand for their element type.
func (s *Subclass[V]) keyType(k any) (reflect.Type, bool) {
	switch x := k.(type) {
	case string:
		rt, err := s.types.ResolveType(x)
		if err != nil {
			return nil, false
		}
		if rt.Kind() == reflect.Pointer {
			rt = rt.Elem()
		}
		return rt, true
	case reflect.Type:
		if x.Kind() != reflect.Pointer {
			return nil, false
		}
		return x.Elem(), true
	case typeNamer:
		return x.Elem(), true
	default:
		return nil, false
	}
}
