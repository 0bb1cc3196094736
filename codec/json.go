package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// JSON is a Codec backed by encoding/json. The zero value is ready to use.
//
// Indent, when set, pretty-prints with the given indent string.
// UseNumber decodes numbers as json.Number instead of float64.
type JSON[V any] struct {
	Indent    string
	UseNumber bool
}

var _ Codec[any] = JSON[any]{}

func (c JSON[V]) Encode(v V) ([]byte, error) {
	if c.Indent != "" {
		return json.MarshalIndent(v, "", c.Indent)
	}
	return json.Marshal(v)
}

func (c JSON[V]) Decode(b []byte) (V, error) {
	var v V
	if !c.UseNumber {
		err := json.Unmarshal(b, &v)
		return v, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	if _, err := dec.Token(); err != io.EOF {
		var zero V
		return zero, errors.New("invalid character after top-level value")
	}
	return v, nil
}

func (JSON[V]) Name() string { return "json" }
