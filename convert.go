package jsoner

import (
	"reflect"
	"sync"

	"github.com/unkn0wn-root/jsoner/types"
)

// DictConvertible is implemented by types that convert themselves to a map.
// Map values may be any value the Serializer can encode, including other objects.
type DictConvertible interface {
	ToDict() (map[string]any, error)
}

// DictConstructible is implemented (on the pointer receiver) by types that
// rebuild themselves from the map produced by ToDict.
type DictConstructible interface {
	FromDict(map[string]any) error
}

// StringConvertible is implemented by types that convert themselves to text.
type StringConvertible interface {
	ToStr() (string, error)
}

// StringConstructible is implemented (on the pointer receiver) by types that
// rebuild themselves from the text produced by ToStr.
type StringConstructible interface {
	FromStr(string) error
}

// Strategy names how a value is turned into an envelope payload.
type Strategy uint8

const (
	StrategyNone Strategy = iota
	StrategyDict
	StrategyString
	StrategyRegistry
)

func (s Strategy) String() string {
	switch s {
	case StrategyDict:
		return "dict"
	case StrategyString:
		return "string"
	case StrategyRegistry:
		return "registry"
	default:
		return "none"
	}
}

type capability uint8

const (
	capDict capability = 1 << iota
	capString
)

var (
	dictConvertibleType     = reflect.TypeFor[DictConvertible]()
	dictConstructibleType   = reflect.TypeFor[DictConstructible]()
	stringConvertibleType   = reflect.TypeFor[StringConvertible]()
	stringConstructibleType = reflect.TypeFor[StringConstructible]()

	capCache sync.Map // reflect.Type -> capability
)

// capabilitiesOf computes the dict/string capability bits of rt once and caches them.
func capabilitiesOf(rt reflect.Type) capability {
	if c, ok := capCache.Load(rt); ok {
		return c.(capability)
	}
	elem := rt
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	var c capability
	if elem.Kind() != reflect.Interface {
		ptr := reflect.PointerTo(elem)
		if (elem.Implements(dictConvertibleType) || ptr.Implements(dictConvertibleType)) &&
			ptr.Implements(dictConstructibleType) {
			c |= capDict
		}
		if (elem.Implements(stringConvertibleType) || ptr.Implements(stringConvertibleType)) &&
			ptr.Implements(stringConstructibleType) {
			c |= capString
		}
	}
	capCache.Store(rt, c)
	return c
}

// typeOf maps a value, a reflect.Type or a descriptor to the type it stands for.
func typeOf(v any) reflect.Type {
	switch x := v.(type) {
	case nil:
		return nil
	case reflect.Type:
		return x
	case *types.Descriptor:
		return x.Type()
	default:
		return reflect.TypeOf(v)
	}
}

// IsDictConvertible reports whether the type of v (or v itself when it is a
// reflect.Type or descriptor) has both ToDict and FromDict.
func IsDictConvertible(v any) bool {
	rt := typeOf(v)
	return rt != nil && capabilitiesOf(rt)&capDict != 0
}

// IsStringConvertible reports whether the type of v has both ToStr and FromStr.
func IsStringConvertible(v any) bool {
	rt := typeOf(v)
	return rt != nil && capabilitiesOf(rt)&capString != 0
}

// IsRegistrySerializable reports whether the type of v, or one of its
// ancestors, is present in both the encoder and the decoder registry.
func (s *Serializer) IsRegistrySerializable(v any) bool {
	rt := typeOf(v)
	if rt == nil {
		return false
	}
	return s.encoders.Contains(rt) && s.decoders.Contains(rt)
}

// IsSerializable reports whether any strategy covers v.
func (s *Serializer) IsSerializable(v any) bool {
	return s.StrategyOf(v) != StrategyNone
}

// StrategyOf returns the strategy Encode would use for v:
// dict conversion, then string conversion, then the registries.
func (s *Serializer) StrategyOf(v any) Strategy {
	rt := typeOf(v)
	if rt == nil {
		return StrategyNone
	}
	return s.strategyOf(rt)
}

func (s *Serializer) strategyOf(rt reflect.Type) Strategy {
	c := capabilitiesOf(rt)
	switch {
	case c&capDict != 0:
		return StrategyDict
	case c&capString != 0:
		return StrategyString
	case s.encoders.Contains(rt) && s.decoders.Contains(rt):
		return StrategyRegistry
	default:
		return StrategyNone
	}
}

// as returns rv as I, copying it into a fresh pointer when only *T implements I.
func as[I any](rv reflect.Value) (I, bool) {
	if i, ok := rv.Interface().(I); ok {
		return i, true
	}
	if rv.Kind() != reflect.Pointer {
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		i, ok := p.Interface().(I)
		return i, ok
	}
	var zero I
	return zero, false
}
