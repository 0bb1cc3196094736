package codec

import gojson "github.com/goccy/go-json"

// GoJSON is a Codec backed by goccy/go-json. It produces the same JSON text as
// JSON and is a drop-in replacement when encoding speed matters.
// The zero value is ready to use.
type GoJSON[V any] struct{}

var _ Codec[any] = GoJSON[any]{}

func (GoJSON[V]) Encode(v V) ([]byte, error) { return gojson.Marshal(v) }
func (GoJSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := gojson.Unmarshal(b, &v)
	return v, err
}

func (GoJSON[V]) Name() string { return "go-json" }
