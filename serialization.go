package jsoner

import (
	"fmt"
	"io"
	"reflect"
	"sync"
)

// Dumps encodes v and writes it with the backend. The default JSON backend
// writes compact output ({"a":1}); set codec.JSON.Indent for formatted text.
func (s *Serializer) Dumps(v any) ([]byte, error) {
	tree, err := s.Encode(v)
	if err != nil {
		return nil, err
	}
	return s.backend.Encode(tree)
}

// Dump writes the Dumps output of v to w.
func (s *Serializer) Dump(w io.Writer, v any) error {
	b, err := s.Dumps(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Loads reads b with the backend and rebuilds the objects it carries.
func (s *Serializer) Loads(b []byte) (any, error) {
	tree, err := s.backend.Decode(b)
	if err != nil {
		return nil, err
	}
	return s.Decode(tree)
}

// Load reads r to the end and calls Loads.
func (s *Serializer) Load(r io.Reader) (any, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return s.Loads(b)
}

// LoadsAs is Loads followed by a type assertion to T. A null document yields
// the zero T.
func LoadsAs[T any](s *Serializer, b []byte) (T, error) {
	var zero T
	v, err := s.Loads(b)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("jsoner: decoded %T, want %s", v, reflect.TypeFor[T]())
	}
	return t, nil
}

var (
	defaultMu sync.RWMutex
	std       = MustNew(Options{})
)

// Default returns the process-wide Serializer used by the package-level functions.
func Default() *Serializer {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return std
}

// SetDefault replaces the process-wide Serializer. nil is ignored.
func SetDefault(s *Serializer) {
	if s == nil {
		return
	}
	defaultMu.Lock()
	std = s
	defaultMu.Unlock()
}

// ResetDefault installs a fresh Serializer with default options and returns it.
func ResetDefault() *Serializer {
	s := MustNew(Options{})
	SetDefault(s)
	return s
}

// Dumps encodes v with the default Serializer.
func Dumps(v any) ([]byte, error) { return Default().Dumps(v) }

// Dump writes v to w with the default Serializer.
func Dump(w io.Writer, v any) error { return Default().Dump(w, v) }

// Loads decodes b with the default Serializer.
func Loads(b []byte) (any, error) { return Default().Loads(b) }

// Load decodes r with the default Serializer.
func Load(r io.Reader) (any, error) { return Default().Load(r) }
