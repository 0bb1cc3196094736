// Package types keeps the table of Go types that jsoner can name on the wire.
//
// Go has no runtime import-by-name, so every type that should be reconstructed
// from a dotted path must be registered up front. Each registration produces a
// Descriptor holding the type, a reference to its declared parent and the
// precomputed ancestor chain used by subtype-aware lookups.
package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Any is the universal base type. Every ancestor chain ends with it.
var Any = reflect.TypeFor[any]()

// AnyName is the path under which Any is registered in every table.
const AnyName = "builtin.any"

var (
	ErrDuplicateType = errors.New("types: duplicate type registration")
	ErrUnknownParent = errors.New("types: unknown parent type")
	ErrInvalidName   = errors.New("types: invalid type path")
	ErrInUse         = errors.New("types: type has registered children")
)

// Descriptor describes one registered type.
type Descriptor struct {
	name      string
	rtype     reflect.Type // as registered (may be a pointer)
	elem      reflect.Type // rtype with one pointer level removed
	parent    int          // index into the arena, -1 for the root
	ancestors []reflect.Type
}

// Name returns the dotted path of the type.
func (d *Descriptor) Name() string { return d.name }

// Type returns the type as it was registered. Decoding yields values of this type.
func (d *Descriptor) Type() reflect.Type { return d.rtype }

// Elem returns the non-pointer form of the type.
func (d *Descriptor) Elem() reflect.Type { return d.elem }

// Pointer reports whether the type was registered in pointer form.
func (d *Descriptor) Pointer() bool { return d.rtype != d.elem }

// Ancestors returns the ancestor chain, most-derived first, ending at Any.
func (d *Descriptor) Ancestors() []reflect.Type {
	out := make([]reflect.Type, len(d.ancestors))
	copy(out, d.ancestors)
	return out
}

func (d *Descriptor) String() string { return d.name }

// Table is an arena of descriptors indexed by path and by element type.
// It is safe for concurrent use.
type Table struct {
	mu     sync.RWMutex
	arena  []*Descriptor // nil slots are deregistered entries
	byName map[string]int
	byType map[reflect.Type]int
	spaces map[string]int // namespace -> number of live descriptors
}

// NewTable returns a table holding only the universal base type.
func NewTable() *Table {
	t := &Table{}
	t.init()
	return t
}

func (t *Table) init() {
	root := &Descriptor{name: AnyName, rtype: Any, elem: Any, parent: -1}
	root.ancestors = []reflect.Type{Any}
	t.arena = []*Descriptor{root}
	t.byName = map[string]int{AnyName: 0}
	t.byType = map[reflect.Type]int{Any: 0}
	t.spaces = map[string]int{namespace(AnyName): 1}
}

type regOptions struct {
	parent string
}

// Option customizes a registration.
type Option func(*regOptions)

// Extends declares the registered type as a subtype of the type registered
// under parent. Lookups that miss on the subtype fall back to the parent.
func Extends(parent string) Option {
	return func(o *regOptions) { o.parent = parent }
}

// Register adds a type to the table. sample is a value of the type, a pointer
// to one (decoding then produces pointers) or a reflect.Type. An empty name
// registers the type under its derived path (see PathOf).
func (t *Table) Register(name string, sample any, opts ...Option) (*Descriptor, error) {
	rtype := reflectType(sample)
	if rtype == nil {
		return nil, fmt.Errorf("%w: nil sample", ErrInvalidName)
	}
	elem := rtype
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if name == "" {
		p, ok := derivedPath(elem)
		if !ok {
			return nil, fmt.Errorf("%w: anonymous type %s needs an explicit name", ErrInvalidName, elem)
		}
		name = p
	}
	if err := validName(name); err != nil {
		return nil, err
	}

	var o regOptions
	for _, opt := range opts {
		opt(&o)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.byName[name]; ok {
		return nil, fmt.Errorf("%w: name %q", ErrDuplicateType, name)
	}
	if i, ok := t.byType[elem]; ok {
		return nil, fmt.Errorf("%w: %s already registered as %q", ErrDuplicateType, elem, t.arena[i].name)
	}

	parent := 0
	if o.parent != "" {
		i, ok := t.byName[o.parent]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParent, o.parent)
		}
		parent = i
	}

	d := &Descriptor{name: name, rtype: rtype, elem: elem, parent: parent}
	pa := t.arena[parent].ancestors
	d.ancestors = make([]reflect.Type, 0, len(pa)+1)
	d.ancestors = append(d.ancestors, elem)
	d.ancestors = append(d.ancestors, pa...)

	t.arena = append(t.arena, d)
	idx := len(t.arena) - 1
	t.byName[name] = idx
	t.byType[elem] = idx
	t.spaces[namespace(name)]++
	return d, nil
}

// MustRegister is like Register but panics on error.
func (t *Table) MustRegister(name string, sample any, opts ...Option) *Descriptor {
	d, err := t.Register(name, sample, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Deregister removes the type registered under name. Types that other
// registrations extend cannot be removed.
func (t *Table) Deregister(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.byName[name]
	if !ok || i == 0 {
		return &ImportError{Path: name, Reason: "not registered"}
	}
	for _, d := range t.arena {
		if d != nil && d.parent == i {
			return fmt.Errorf("%w: %q is extended by %q", ErrInUse, name, d.name)
		}
	}
	d := t.arena[i]
	t.arena[i] = nil
	delete(t.byName, name)
	delete(t.byType, d.elem)
	ns := namespace(name)
	if t.spaces[ns]--; t.spaces[ns] <= 0 {
		delete(t.spaces, ns)
	}
	return nil
}

// Reset drops every registration except the universal base type.
func (t *Table) Reset() {
	t.mu.Lock()
	t.init()
	t.mu.Unlock()
}

// Len returns the number of registered types, the base type included.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byName)
}

// Resolve returns the descriptor registered under path. It fails with an
// *ImportError when the path has no namespace, the namespace is unknown or
// the namespace has no such symbol.
func (t *Table) Resolve(path string) (*Descriptor, error) {
	ns, sym := split(path)
	if ns == "" || sym == "" {
		return nil, &ImportError{Path: path, Reason: "path has no namespace"}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if i, ok := t.byName[path]; ok {
		return t.arena[i], nil
	}
	if _, ok := t.spaces[ns]; !ok {
		return nil, &ImportError{Path: path, Reason: fmt.Sprintf("namespace %q not found", ns)}
	}
	return nil, &ImportError{Path: path, Reason: fmt.Sprintf("%q not found in %q", sym, ns)}
}

// ResolveType is Resolve returning the registered reflect.Type.
func (t *Table) ResolveType(path string) (reflect.Type, error) {
	d, err := t.Resolve(path)
	if err != nil {
		return nil, err
	}
	return d.rtype, nil
}

// Lookup returns the descriptor for rt, trying its element type for pointers.
func (t *Table) Lookup(rt reflect.Type) (*Descriptor, bool) {
	if rt == nil {
		return nil, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lookup(rt)
}

func (t *Table) lookup(rt reflect.Type) (*Descriptor, bool) {
	if i, ok := t.byType[rt]; ok {
		return t.arena[i], true
	}
	if rt.Kind() == reflect.Pointer {
		if i, ok := t.byType[rt.Elem()]; ok {
			return t.arena[i], true
		}
	}
	return nil, false
}

// Ancestors returns the chain searched for rt: rt itself, its element type
// for pointers, the declared parents and finally Any. Unregistered types get
// the short chain [rt, Any].
func (t *Table) Ancestors(rt reflect.Type) []reflect.Type {
	if rt == nil {
		return nil
	}
	out := []reflect.Type{rt}
	t.mu.RLock()
	d, ok := t.lookup(rt)
	var chain []reflect.Type
	if ok {
		chain = d.ancestors
	}
	t.mu.RUnlock()

	if !ok {
		if rt.Kind() == reflect.Pointer {
			out = append(out, rt.Elem())
		}
		if rt != Any {
			out = append(out, Any)
		}
		return out
	}
	for _, a := range chain {
		if a != rt {
			out = append(out, a)
		}
	}
	return out
}

// PathOf returns the registered path of rt or, for named types, the derived
// path. ok is false for anonymous types that are not registered.
func (t *Table) PathOf(rt reflect.Type) (string, bool) {
	if d, ok := t.Lookup(rt); ok {
		return d.name, true
	}
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return derivedPath(rt)
}

// Descriptors returns the live descriptors in registration order.
func (t *Table) Descriptors() []*Descriptor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Descriptor, 0, len(t.byName))
	for _, d := range t.arena {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

// PathOf returns the derived path "<import path>.<Name>" of a named type.
func PathOf(rt reflect.Type) (string, bool) {
	if rt == nil {
		return "", false
	}
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return derivedPath(rt)
}

func derivedPath(rt reflect.Type) (string, bool) {
	if rt.Name() == "" {
		return "", false
	}
	if rt.PkgPath() == "" {
		return "builtin." + rt.Name(), true
	}
	return rt.PkgPath() + "." + rt.Name(), true
}

func reflectType(v any) reflect.Type {
	switch x := v.(type) {
	case reflect.Type:
		return x
	case *Descriptor:
		return x.rtype
	default:
		return reflect.TypeOf(v)
	}
}

func validName(name string) error {
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: %q has surrounding spaces", ErrInvalidName, name)
	}
	ns, sym := split(name)
	if ns == "" || sym == "" {
		return fmt.Errorf("%w: %q has no namespace", ErrInvalidName, name)
	}
	return nil
}

func split(path string) (ns, sym string) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

func namespace(path string) string {
	ns, _ := split(path)
	return ns
}
