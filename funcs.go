package jsoner

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/unkn0wn-root/jsoner/types"
)

// EncodeFunc turns a value into an encodable payload. Stored in the encoder
// registry it is called for the registered type and its subtypes.
type EncodeFunc func(v any) (any, error)

// DecodeFunc rebuilds a value from its payload. t is the type named by the
// envelope, so one decoder can serve several registered types.
type DecodeFunc func(payload any, t reflect.Type) (any, error)

// RegisterFuncs registers T under name and binds typed encode/decode
// functions for it in s's registries. An empty name uses the derived path.
//
//	jsoner.RegisterFuncs(s, "geo.Point",
//	    func(p Point) (any, error) { return []any{p.X, p.Y}, nil },
//	    func(payload any, _ reflect.Type) (Point, error) { ... },
//	)
func RegisterFuncs[T any](
	s *Serializer,
	name string,
	enc func(T) (any, error),
	dec func(payload any, t reflect.Type) (T, error),
	opts ...types.Option,
) (*types.Descriptor, error) {
	d, err := Register[T](s, name, opts...)
	if err != nil {
		return nil, err
	}
	key := d.Elem()
	var ef EncodeFunc = func(v any) (any, error) {
		t, ok := convertTo[T](v)
		if !ok {
			return nil, fmt.Errorf("encoder for %s called with %T", d.Name(), v)
		}
		return enc(t)
	}
	var df DecodeFunc = func(payload any, rt reflect.Type) (any, error) {
		return dec(payload, rt)
	}
	if err := s.encoders.Add(key, ef); err != nil {
		_ = s.types.Deregister(d.Name())
		return nil, err
	}
	if err := s.decoders.Add(key, df); err != nil {
		s.encoders.Delete(key)
		_ = s.types.Deregister(d.Name())
		return nil, err
	}
	return d, nil
}

// convertTo returns v as T, bridging between T and *T.
func convertTo[T any](v any) (T, bool) {
	if t, ok := v.(T); ok {
		return t, true
	}
	var zero T
	want := reflect.TypeFor[T]()
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return zero, false
	}
	switch {
	case rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Type().Elem() == want:
		return rv.Elem().Interface().(T), true
	case want.Kind() == reflect.Pointer && want.Elem() == rv.Type():
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		return p.Interface().(T), true
	}
	return zero, false
}

var errSignature = errors.New("unsupported function signature")

// callEncoder applies a registry entry to v. Functions are called, anything
// else is a literal payload.
func callEncoder(enc, v any) (any, error) {
	switch f := enc.(type) {
	case nil:
		return nil, nil
	case EncodeFunc:
		return f(v)
	case func(any) (any, error):
		return f(v)
	case func(any) any:
		return f(v), nil
	}
	if reflect.TypeOf(enc).Kind() == reflect.Func {
		return nil, fmt.Errorf("%w: %T", errSignature, enc)
	}
	return enc, nil
}

// falsy reports values that a literal decoder entry cannot stand in for.
func falsy(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String, reflect.Chan:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	case reflect.Struct:
		return false
	default:
		return rv.IsZero()
	}
}
