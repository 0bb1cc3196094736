package jsoner

import (
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
)

const pkgPath = "github.com/unkn0wn-root/jsoner."

var errBoom = errors.New("boom")

type dictObj struct {
	A int
}

func (d dictObj) ToDict() (map[string]any, error) { return map[string]any{"a": d.A}, nil }

func (d *dictObj) FromDict(m map[string]any) error {
	if n, ok := toFloat(m["a"]); ok {
		d.A = int(n)
	}
	return nil
}

type strObj struct {
	S string
}

func (s strObj) ToStr() (string, error) { return s.S, nil }

func (s *strObj) FromStr(v string) error {
	s.S = v
	return nil
}

// both strategies; dict wins
type dualObj struct{}

func (dualObj) ToDict() (map[string]any, error) { return map[string]any{}, nil }
func (*dualObj) FromDict(map[string]any) error  { return nil }
func (dualObj) ToStr() (string, error)          { return "", nil }
func (*dualObj) FromStr(string) error           { return nil }

type halfDict struct{}

func (halfDict) ToDict() (map[string]any, error) { return nil, nil }

type failingDict struct{}

func (failingDict) ToDict() (map[string]any, error) { return nil, errBoom }
func (*failingDict) FromDict(map[string]any) error  { return errBoom }

type badUTF8 struct{}

func (badUTF8) ToStr() (string, error) { return "\xff\xfe", nil }
func (*badUTF8) FromStr(string) error  { return nil }

// holds other objects in its dict payload
type nested struct {
	First  strObj
	Second dictObj
}

func (n nested) ToDict() (map[string]any, error) {
	return map[string]any{"first": n.First, "second": n.Second}, nil
}

func (n *nested) FromDict(m map[string]any) error {
	first, ok := m["first"].(strObj)
	if !ok {
		return errors.New("first is not rebuilt")
	}
	second, ok := m["second"].(dictObj)
	if !ok {
		return errors.New("second is not rebuilt")
	}
	n.First, n.Second = first, second
	return nil
}

type dummy struct{}

type plain struct{ N int }

type celsius float64

type recHooks struct {
	mu         sync.Mutex
	fallbacks  []string
	rejected   []string
	heals      []string
	setRejects []string
}

func (h *recHooks) DecodeFallback(path, reason string) {
	h.mu.Lock()
	h.fallbacks = append(h.fallbacks, path+":"+reason)
	h.mu.Unlock()
}

func (h *recHooks) EncodeRejected(name string) {
	h.mu.Lock()
	h.rejected = append(h.rejected, name)
	h.mu.Unlock()
}

func (h *recHooks) SelfHeal(key, reason string) {
	h.mu.Lock()
	h.heals = append(h.heals, key+":"+reason)
	h.mu.Unlock()
}

func (h *recHooks) ProviderSetRejected(key string) {
	h.mu.Lock()
	h.setRejects = append(h.setRejects, key)
	h.mu.Unlock()
}

func newTestSerializer(t *testing.T, h Hooks) *Serializer {
	t.Helper()
	s, err := New(Options{Hooks: h})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func mustRegister[T any](t *testing.T, s *Serializer, name string) string {
	t.Helper()
	d, err := Register[T](s, name)
	if err != nil {
		t.Fatalf("Register %T: %v", *new(T), err)
	}
	return d.Name()
}

func mustDumps(t *testing.T, s *Serializer, v any) string {
	t.Helper()
	b, err := s.Dumps(v)
	if err != nil {
		t.Fatalf("Dumps(%#v): %v", v, err)
	}
	return string(b)
}

func mustLoads(t *testing.T, s *Serializer, b string) any {
	t.Helper()
	v, err := s.Loads([]byte(b))
	if err != nil {
		t.Fatalf("Loads(%s): %v", b, err)
	}
	return v
}

// jsonEqual compares a document against the expected tree after a plain
// encoding/json round trip.
func jsonEqual(t *testing.T, got string, want any) {
	t.Helper()
	var g any
	if err := json.Unmarshal([]byte(got), &g); err != nil {
		t.Fatalf("unmarshal %s: %v", got, err)
	}
	wb, _ := json.Marshal(want)
	var w any
	_ = json.Unmarshal(wb, &w)
	if !reflect.DeepEqual(g, w) {
		t.Fatalf("document mismatch:\n got %s\nwant %s", got, wb)
	}
}
