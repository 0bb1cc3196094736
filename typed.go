package jsoner

import "github.com/unkn0wn-root/jsoner/codec"

// Typed adapts a Serializer to codec.Codec[V], so documents carrying
// registered objects can be stored by anything that takes a codec.
// A nil S uses Default().
type Typed[V any] struct {
	S *Serializer
}

var _ codec.Codec[any] = Typed[any]{}

func (t Typed[V]) serializer() *Serializer {
	if t.S != nil {
		return t.S
	}
	return Default()
}

func (t Typed[V]) Encode(v V) ([]byte, error) { return t.serializer().Dumps(v) }

func (t Typed[V]) Decode(b []byte) (V, error) { return LoadsAs[V](t.serializer(), b) }

// Name reports the backend name, e.g. "json".
func (t Typed[V]) Name() string {
	if n, ok := t.serializer().backend.(codec.Named); ok {
		return n.Name()
	}
	return "jsoner"
}
