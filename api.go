package jsoner

import (
	"reflect"

	c "github.com/unkn0wn-root/jsoner/codec"
	"github.com/unkn0wn-root/jsoner/internal/util"
	"github.com/unkn0wn-root/jsoner/registry"
	"github.com/unkn0wn-root/jsoner/types"
)

// Reserved envelope keys. User maps must not use them.
const (
	ClassKey       = "__cls__"
	ObjectClassKey = "__obj_cls__"
	DataKey        = "__json_data__"
)

const defaultMaxDepth = 512

// Options configure a Serializer. The zero value is usable; every nil or zero
// field falls back to a default.
type Options struct {
	Types    *types.Table            // nil => new table
	Encoders *registry.Subclass[any] // nil => new registry over Types
	Decoders *registry.Subclass[any] // nil => new registry over Types
	Backend  c.Codec[any]            // nil => codec.JSON
	Logger   Logger                  // nil => NopLogger
	Hooks    Hooks                   // nil => NopHooks
	MaxDepth int                     // 0 => 512

	// DisableBuiltins skips registering the builtin time.Time support.
	DisableBuiltins bool
}

// Serializer owns a type table, an encoder and a decoder registry and the
// backend codec. It is safe for concurrent use; registrations made while
// other goroutines encode are picked up by later lookups.
type Serializer struct {
	types    *types.Table
	encoders *registry.Subclass[any]
	decoders *registry.Subclass[any]
	backend  c.Codec[any]
	log      Logger
	hooks    Hooks
	maxDepth int
}

// New builds a Serializer from opts.
func New(opts Options) (*Serializer, error) {
	s := &Serializer{
		types:    opts.Types,
		encoders: opts.Encoders,
		decoders: opts.Decoders,
	}
	if s.types == nil {
		s.types = types.NewTable()
	}
	if s.encoders == nil {
		s.encoders = registry.NewSubclass[any](s.types)
	}
	if s.decoders == nil {
		s.decoders = registry.NewSubclass[any](s.types)
	}
	s.backend = util.Coalesce[c.Codec[any]](opts.Backend, c.JSON[any]{})
	s.log = util.Coalesce[Logger](opts.Logger, NopLogger{})
	s.hooks = util.Coalesce[Hooks](opts.Hooks, NopHooks{})
	s.maxDepth = util.Coalesce(opts.MaxDepth, defaultMaxDepth)

	if !opts.DisableBuiltins {
		if err := registerBuiltins(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustNew is like New but panics on error.
func MustNew(opts Options) *Serializer {
	s, err := New(opts)
	if err != nil {
		panic(err)
	}
	return s
}

// Types returns the type table used to name and resolve types.
func (s *Serializer) Types() *types.Table { return s.types }

// Encoders returns the registry of encoders. Values are EncodeFunc or literal payloads.
func (s *Serializer) Encoders() *registry.Subclass[any] { return s.encoders }

// Decoders returns the registry of decoders. Values are DecodeFunc or literal substitutes.
func (s *Serializer) Decoders() *registry.Subclass[any] { return s.decoders }

// Backend returns the codec that turns value trees into bytes.
func (s *Serializer) Backend() c.Codec[any] { return s.backend }

// Register adds T to the type table under name (empty => derived path).
// Register a pointer type (*T) to make decoding yield pointers.
func Register[T any](s *Serializer, name string, opts ...types.Option) (*types.Descriptor, error) {
	return s.types.Register(name, reflect.TypeFor[T](), opts...)
}
