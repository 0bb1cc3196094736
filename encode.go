package jsoner

import (
	"encoding"
	"encoding/json"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/unkn0wn-root/jsoner/types"
)

var basicTypes = map[reflect.Kind]reflect.Type{
	reflect.Bool:    reflect.TypeFor[bool](),
	reflect.Int:     reflect.TypeFor[int](),
	reflect.Int8:    reflect.TypeFor[int8](),
	reflect.Int16:   reflect.TypeFor[int16](),
	reflect.Int32:   reflect.TypeFor[int32](),
	reflect.Int64:   reflect.TypeFor[int64](),
	reflect.Uint:    reflect.TypeFor[uint](),
	reflect.Uint8:   reflect.TypeFor[uint8](),
	reflect.Uint16:  reflect.TypeFor[uint16](),
	reflect.Uint32:  reflect.TypeFor[uint32](),
	reflect.Uint64:  reflect.TypeFor[uint64](),
	reflect.Uintptr: reflect.TypeFor[uint64](),
	reflect.Float32: reflect.TypeFor[float32](),
	reflect.Float64: reflect.TypeFor[float64](),
	reflect.String:  reflect.TypeFor[string](),
}

// Encode converts v into a tree the backend can write: map[string]any,
// []any, builtin scalars and nil. Objects covered by a strategy become
// {"__obj_cls__": path, "__json_data__": payload}; types become
// {"__cls__": path}.
func (s *Serializer) Encode(v any) (any, error) {
	return s.encode(v, 0)
}

func (s *Serializer) encode(v any, depth int) (any, error) {
	if depth > s.maxDepth {
		return nil, ErrMaxDepth
	}
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool, string, float32, float64, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return v, nil
	case []byte:
		return x, nil
	case reflect.Type:
		return s.encodeClass(x)
	case *types.Descriptor:
		return map[string]any{ClassKey: x.Name()}, nil
	case map[string]any:
		if x == nil {
			return nil, nil
		}
		out := make(map[string]any, len(x))
		for k, e := range x {
			ev, err := s.encode(e, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case []any:
		if x == nil {
			return nil, nil
		}
		out := make([]any, len(x))
		for i, e := range x {
			ev, err := s.encode(e, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	rt := rv.Type()
	if rt.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}
	if hasIdentity(rt) {
		if st := s.strategyOf(rt); st != StrategyNone {
			return s.encodeObject(v, rv, st, depth)
		}
	}
	if _, ok := v.(json.Marshaler); ok {
		return v, nil
	}

	switch rt.Kind() {
	case reflect.Pointer:
		return s.encode(rv.Elem().Interface(), depth+1)
	case reflect.Map:
		return s.encodeMap(rv, depth)
	case reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
		if rt.Elem().Kind() == reflect.Uint8 {
			return rv.Bytes(), nil
		}
		return s.encodeList(rv, depth)
	case reflect.Array:
		return s.encodeList(rv, depth)
	}
	if bt, ok := basicTypes[rt.Kind()]; ok {
		return rv.Convert(bt).Interface(), nil
	}
	return nil, s.reject(rt)
}

// hasIdentity reports types that may carry a strategy: named types from a
// package, pointers and struct types.
func hasIdentity(rt reflect.Type) bool {
	return rt.PkgPath() != "" || rt.Kind() == reflect.Pointer || rt.Kind() == reflect.Struct
}

func (s *Serializer) encodeObject(v any, rv reflect.Value, st Strategy, depth int) (any, error) {
	rt := rv.Type()
	path, ok := s.types.PathOf(rt)
	if !ok {
		return nil, &EncodingError{Type: rt.String(), Reason: "type has no importable path"}
	}

	var data any
	switch st {
	case StrategyDict:
		conv, _ := as[DictConvertible](rv)
		m, err := conv.ToDict()
		if err != nil {
			return nil, &EncodingError{Type: path, Reason: "ToDict failed", Err: err}
		}
		if m != nil {
			data = m
		}
	case StrategyString:
		conv, _ := as[StringConvertible](rv)
		str, err := conv.ToStr()
		if err != nil {
			return nil, &EncodingError{Type: path, Reason: "ToStr failed", Err: err}
		}
		if !utf8.ValidString(str) {
			return nil, &EncodingError{Type: path, Reason: "ToStr returned invalid UTF-8"}
		}
		data = str
	case StrategyRegistry:
		enc, _ := s.encoders.Get(rt)
		out, err := callEncoder(enc, v)
		if err != nil {
			return nil, &EncodingError{Type: path, Reason: "encoder failed", Err: err}
		}
		data = out
	}

	payload, err := s.encode(data, depth+1)
	if err != nil {
		return nil, err
	}
	return map[string]any{ObjectClassKey: path, DataKey: payload}, nil
}

func (s *Serializer) encodeClass(rt reflect.Type) (any, error) {
	path, ok := s.types.PathOf(rt)
	if !ok {
		return nil, s.reject(rt)
	}
	return map[string]any{ClassKey: path}, nil
}

func (s *Serializer) encodeMap(rv reflect.Value, depth int) (any, error) {
	if rv.IsNil() {
		return nil, nil
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, ok := mapKey(iter.Key())
		if !ok {
			return nil, s.reject(rv.Type())
		}
		ev, err := s.encode(iter.Value().Interface(), depth+1)
		if err != nil {
			return nil, err
		}
		out[k] = ev
	}
	return out, nil
}

func (s *Serializer) encodeList(rv reflect.Value, depth int) (any, error) {
	out := make([]any, rv.Len())
	for i := range out {
		ev, err := s.encode(rv.Index(i).Interface(), depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = ev
	}
	return out, nil
}

// mapKey renders keys the way encoding/json does: strings, integers and
// encoding.TextMarshaler.
func mapKey(k reflect.Value) (string, bool) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), true
	case reflect.Interface:
		if k.IsNil() {
			return "", false
		}
		return mapKey(k.Elem())
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		b, err := tm.MarshalText()
		return string(b), err == nil
	}
	return "", false
}

func (s *Serializer) reject(rt reflect.Type) error {
	name := rt.String()
	s.hooks.EncodeRejected(name)
	s.log.Debug("encode rejected", Fields{"type": name})
	return &UnserializableError{Type: name}
}
