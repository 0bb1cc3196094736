package jsoner

import (
	"fmt"
	"reflect"

	"github.com/unkn0wn-root/jsoner/types"
)

// Decode fallback reasons passed to Hooks.DecodeFallback.
const (
	ReasonUnresolvedType   = "unresolved_type"
	ReasonNotConstructible = "not_constructible"
	ReasonPayloadMismatch  = "payload_mismatch"
	ReasonBadTag           = "bad_tag"
)

// Decode rebuilds live values in a tree read by the backend. Maps are visited
// bottom-up, so payloads reach decoders already reconstructed.
// Decode reuses the maps and slices of tree.
func (s *Serializer) Decode(tree any) (any, error) {
	return s.walk(tree, 0)
}

func (s *Serializer) walk(v any, depth int) (any, error) {
	if depth > s.maxDepth {
		return nil, ErrMaxDepth
	}
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			d, err := s.walk(e, depth+1)
			if err != nil {
				return nil, err
			}
			x[k] = d
		}
		return s.DecodeHook(x)
	case []any:
		for i, e := range x {
			d, err := s.walk(e, depth+1)
			if err != nil {
				return nil, err
			}
			x[i] = d
		}
		return x, nil
	case map[any]any:
		m, ok := stringKeyed(x)
		if !ok {
			return x, nil
		}
		return s.walk(m, depth)
	default:
		return v, nil
	}
}

// stringKeyed converts the map[any]any produced by some binary backends.
func stringKeyed(in map[any]any) (map[string]any, bool) {
	out := make(map[string]any, len(in))
	for k, v := range in {
		ks, ok := k.(string)
		if !ok {
			return nil, false
		}
		out[ks] = v
	}
	return out, true
}

// DecodeHook inspects one decoded map. A "__cls__" envelope becomes the named
// reflect.Type; an "__obj_cls__" envelope becomes the reconstructed object.
// Any other map, and any envelope that cannot be honoured, is returned as is.
// Errors come only from FromDict, FromStr or a registered decoder.
func (s *Serializer) DecodeHook(m map[string]any) (any, error) {
	if raw, ok := m[ClassKey]; ok {
		d, ok := s.resolveTag(raw)
		if !ok {
			return m, nil
		}
		return d.Type(), nil
	}
	raw, ok := m[ObjectClassKey]
	if !ok {
		return m, nil
	}
	d, ok := s.resolveTag(raw)
	if !ok {
		return m, nil
	}
	return s.construct(m, d, m[DataKey])
}

func (s *Serializer) resolveTag(raw any) (*types.Descriptor, bool) {
	path, ok := raw.(string)
	if !ok {
		s.fallback(fmt.Sprint(raw), ReasonBadTag)
		return nil, false
	}
	d, err := s.types.Resolve(path)
	if err != nil {
		s.log.Debug("type not resolved", Fields{"type": path, "err": err})
		s.fallback(path, ReasonUnresolvedType)
		return nil, false
	}
	return d, true
}

func (s *Serializer) construct(m map[string]any, d *types.Descriptor, data any) (any, error) {
	path := d.Name()
	c := capabilitiesOf(d.Type())
	switch {
	case c&capDict != 0:
		var dm map[string]any
		if data != nil {
			var ok bool
			if dm, ok = data.(map[string]any); !ok {
				s.fallback(path, ReasonPayloadMismatch)
				return m, nil
			}
		}
		p := reflect.New(d.Elem())
		if err := p.Interface().(DictConstructible).FromDict(dm); err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		return result(d, p), nil

	case c&capString != 0:
		str, ok := data.(string)
		if !ok {
			s.fallback(path, ReasonPayloadMismatch)
			return m, nil
		}
		p := reflect.New(d.Elem())
		if err := p.Interface().(StringConstructible).FromStr(str); err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		return result(d, p), nil
	}

	dec, ok := s.decoders.Get(d)
	if !ok {
		s.fallback(path, ReasonNotConstructible)
		return m, nil
	}
	switch f := dec.(type) {
	case DecodeFunc:
		out, err := f(data, d.Type())
		return wrapDecoded(path, out, err)
	case func(any, reflect.Type) (any, error):
		out, err := f(data, d.Type())
		return wrapDecoded(path, out, err)
	}
	if dec != nil && reflect.TypeOf(dec).Kind() == reflect.Func {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("%w: %T", errSignature, dec)}
	}
	if falsy(dec) {
		return m, nil
	}
	return dec, nil
}

// result returns the new object in the form the descriptor was registered with.
func result(d *types.Descriptor, p reflect.Value) any {
	if d.Pointer() {
		return p.Interface()
	}
	return p.Elem().Interface()
}

func wrapDecoded(path string, v any, err error) (any, error) {
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return v, nil
}

func (s *Serializer) fallback(path, reason string) {
	s.hooks.DecodeFallback(path, reason)
	s.log.Debug("decode fallback", Fields{"type": path, "reason": reason})
}
