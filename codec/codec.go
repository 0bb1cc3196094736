// Package codec holds the byte codecs jsoner writes its value trees with.
//
// jsoner turns values into trees of map[string]any, []any and builtin scalars
// before handing them to a Codec[any]. Any codec that round-trips such trees
// can serve as the backend: JSON is the default, the others trade the JSON
// text format for size or speed.
package codec

// Codec encodes/decodes values V to []byte.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Named is implemented by codecs that can report a short format name.
type Named interface {
	Name() string
}
