// Package store keeps encoded documents in a byte provider.
//
// Values are written with a codec.Codec[V] (by default jsoner.Typed[V] over
// the default Serializer, so registered objects inside V come back live) and
// framed with the backend name. Entries that fail frame validation, were
// written by another backend or no longer decode are deleted on read and
// reported as misses.
//
// Keys:
//
//	doc:<ns>:<key>
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/jsoner"
	c "github.com/unkn0wn-root/jsoner/codec"
	"github.com/unkn0wn-root/jsoner/internal/util"
	"github.com/unkn0wn-root/jsoner/internal/wire"
	pr "github.com/unkn0wn-root/jsoner/provider"
)

// Self-heal reasons passed to Hooks.SelfHeal.
const (
	ReasonCorrupt       = "corrupt"
	ReasonCodecMismatch = "codec_mismatch"
	ReasonValueDecode   = "value_decode"
)

const defaultTTL = 10 * time.Minute

// SetCostFunc returns the cost charged to the provider for one entry.
type SetCostFunc func(key string, raw []byte) int64

// Options tune a Store. Only Namespace and Provider are required.
type Options[V any] struct {
	// Required
	Namespace string // logical namespace to avoid collisions. e.g. "user", "session"
	Provider  pr.Provider

	Codec       c.Codec[V]    // nil => jsoner.Typed[V] over jsoner.Default()
	Logger      jsoner.Logger // nil => NopLogger
	Hooks       jsoner.Hooks  // nil => NopHooks
	DefaultTTL  time.Duration // 0 => 10m
	ComputeCost SetCostFunc   // nil => len(raw)
	Disabled    bool          // default false (enabled)
}

// Store persists values of type V under namespaced keys.
type Store[V any] struct {
	ns          string
	provider    pr.Provider
	codec       c.Codec[V]
	codecName   string
	log         jsoner.Logger
	hooks       jsoner.Hooks
	enabled     bool
	defaultTTL  time.Duration
	computeCost SetCostFunc
}

func New[V any](opts Options[V]) (*Store[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("store: provider is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("store: namespace is required")
	}

	s := &Store[V]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		enabled:  !opts.Disabled,
	}

	// defaults
	s.codec = opts.Codec
	if s.codec == nil {
		s.codec = jsoner.Typed[V]{}
	}
	if n, ok := s.codec.(c.Named); ok {
		s.codecName = n.Name()
	}
	if len(s.codecName) > 0xFF {
		return nil, fmt.Errorf("store: codec name too long: %q", s.codecName)
	}
	s.log = util.Coalesce[jsoner.Logger](opts.Logger, jsoner.NopLogger{})
	s.hooks = util.Coalesce[jsoner.Hooks](opts.Hooks, jsoner.NopHooks{})
	s.defaultTTL = util.Coalesce(opts.DefaultTTL, defaultTTL)
	s.computeCost = opts.ComputeCost
	if s.computeCost == nil {
		s.computeCost = func(_ string, raw []byte) int64 { return int64(len(raw)) }
	}
	return s, nil
}

func (s *Store[V]) Enabled() bool { return s.enabled }

func (s *Store[V]) Close(ctx context.Context) error {
	return s.provider.Close(ctx)
}

// Get returns the value stored under key. Unreadable entries are deleted and
// reported as misses; only provider errors are returned.
func (s *Store[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if !s.enabled {
		return zero, false, nil
	}
	k := s.storageKey(key)
	raw, ok, err := s.provider.Get(ctx, k)
	if err != nil || !ok {
		return zero, false, err
	}
	name, payload, err := wire.DecodeDoc(raw)
	if err != nil {
		s.heal(ctx, k, ReasonCorrupt, err)
		return zero, false, nil
	}
	if name != s.codecName {
		s.heal(ctx, k, ReasonCodecMismatch, fmt.Errorf("written by %q, reading with %q", name, s.codecName))
		return zero, false, nil
	}
	v, err := s.codec.Decode(payload)
	if err != nil {
		s.heal(ctx, k, ReasonValueDecode, err)
		return zero, false, nil
	}
	return v, true, nil
}

// GetMany reads keys one by one. missing lists keys without a usable entry,
// in input order.
func (s *Store[V]) GetMany(ctx context.Context, keys []string) (map[string]V, []string, error) {
	out := make(map[string]V, len(keys))
	var missing []string
	for _, key := range keys {
		if _, seen := out[key]; seen {
			continue
		}
		v, ok, err := s.Get(ctx, key)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			missing = append(missing, key)
			continue
		}
		out[key] = v
	}
	return out, missing, nil
}

// Put encodes value and stores it under key. ttl == 0 uses the default TTL.
// A write refused by the provider is not an error.
func (s *Store[V]) Put(ctx context.Context, key string, value V, ttl time.Duration) error {
	if !s.enabled {
		return nil
	}
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	payload, err := s.codec.Encode(value)
	if err != nil {
		return err
	}
	frame, err := wire.EncodeDoc(s.codecName, payload)
	if err != nil {
		return err
	}
	k := s.storageKey(key)
	ok, err := s.provider.Set(ctx, k, frame, s.computeCost(k, frame), ttl)
	if err != nil {
		return err
	}
	if !ok {
		s.hooks.ProviderSetRejected(k)
		s.log.Debug("Put rejected by provider (pressure)", jsoner.Fields{"key": key})
	}
	return nil
}

func (s *Store[V]) Delete(ctx context.Context, key string) error {
	if !s.enabled {
		return nil
	}
	return s.provider.Del(ctx, s.storageKey(key))
}

func (s *Store[V]) heal(ctx context.Context, storageKey, reason string, cause error) {
	_ = s.provider.Del(ctx, storageKey)
	s.hooks.SelfHeal(storageKey, reason)
	s.log.Warn("dropped unreadable entry", jsoner.Fields{"key": storageKey, "reason": reason, "err": cause})
}

func (s *Store[V]) storageKey(userKey string) string {
	return "doc:" + s.ns + ":" + userKey
}
