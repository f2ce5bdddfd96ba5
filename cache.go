package sheetcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	c "github.com/unkn0wn-root/sheetcache/codec"
	gen "github.com/unkn0wn-root/sheetcache/genstore"
	"github.com/unkn0wn-root/sheetcache/internal/util"
	"github.com/unkn0wn-root/sheetcache/internal/wire"
	pr "github.com/unkn0wn-root/sheetcache/provider"
)

// sigUnavailable marks a signature that could not be computed. It never
// compares fresh, not even against itself.
const sigUnavailable = "\x00unavailable"

type entry struct {
	value     any
	fetchedAt time.Time
	sig       string
}

// Service owns every cache entry and the invalidation bus. Create one per
// process and share it.
type Service struct {
	ns         string
	gen        gen.GenStore
	provider   pr.Provider
	log        Logger
	hooks      Hooks
	bus        *Bus
	enabled    bool
	defaultTTL time.Duration
	maxStale   time.Duration
	now        func() time.Time

	mu       sync.RWMutex
	entries  map[string]*entry
	inflight map[string]struct{}
	claimed  map[string]struct{}
	sf       singleflight.Group
}

func New(opts ServiceOptions) (*Service, error) {
	if opts.DefaultTTL < 0 {
		return nil, fmt.Errorf("sheetcache: negative default TTL %s", opts.DefaultTTL)
	}

	s := &Service{
		ns:       coalesce(opts.Namespace, "default"),
		provider: opts.Provider,
		enabled:  !opts.Disabled,
		entries:  make(map[string]*entry),
		inflight: make(map[string]struct{}),
		claimed:  make(map[string]struct{}),
	}

	// defaults
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	s.defaultTTL = coalesce(opts.DefaultTTL, defaultTTL)
	s.maxStale = coalesce(opts.MaxStale, defaultMaxStale)
	s.now = opts.Clock
	if s.now == nil {
		s.now = time.Now
	}

	if opts.GenStore != nil {
		s.gen = opts.GenStore
	} else {
		s.gen = gen.NewLocalGenStore()
	}
	s.bus = &Bus{gen: s.gen, log: s.log, hooks: s.hooks}

	return s, nil
}

func (s *Service) Enabled() bool { return s.enabled }

// Bus returns the invalidation bus shared by every wrapped resource.
func (s *Service) Bus() *Bus { return s.bus }

// Bump is shorthand for s.Bus().Bump.
func (s *Service) Bump(ctx context.Context, keys ...string) error {
	return s.bus.Bump(ctx, keys...)
}

// Peek reports the state of key's entry.
func (s *Service) Peek(key string) EntryInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var info EntryInfo
	if e := s.entries[key]; e != nil {
		info.Cached = true
		info.FetchedAt = e.fetchedAt
		info.Signature = e.sig
	}
	_, info.InFlight = s.inflight[key]
	return info
}

// Forget drops key's in-memory entry. A flight already running still fills it.
func (s *Service) Forget(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *Service) Close(ctx context.Context) error {
	var errs []error
	if err := s.gen.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.provider != nil {
		if err := s.provider.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Wrap registers key and returns its Loader. It panics on a nil producer, an
// empty key or a key that was already wrapped on s.
func Wrap[V any](s *Service, key string, produce Producer[V], opts Options[V]) Loader[V] {
	switch {
	case s == nil:
		panic("sheetcache: Wrap on nil service")
	case key == "":
		panic("sheetcache: Wrap with empty key")
	case produce == nil:
		panic("sheetcache: Wrap " + key + " with nil producer")
	}
	s.claim(key)

	r := &resource[V]{
		s:            s,
		key:          key,
		produce:      produce,
		ttl:          coalesce(opts.TTL, s.defaultTTL),
		maxStale:     coalesce(opts.MaxStale, s.maxStale),
		staleIfError: opts.StaleIfError,
		watch:        util.NormalizeKeys(opts.WatchKeys),
		codec:        opts.Codec,
	}
	return r.load
}

type resource[V any] struct {
	s            *Service
	key          string
	produce      Producer[V]
	ttl          time.Duration
	maxStale     time.Duration
	staleIfError bool
	watch        []string
	codec        c.Codec[V]
}

func (r *resource[V]) load(ctx context.Context) (V, error) {
	s := r.s
	if !s.enabled {
		return r.produce(ctx)
	}

	sig := r.signature(ctx)
	if e := s.get(r.key); r.fresh(e, sig, s.now()) {
		s.hooks.Hit(r.key)
		return as[V](e.value), nil
	}

	ch := s.sf.DoChan(r.key, func() (any, error) {
		return r.fill(context.WithoutCancel(ctx))
	})

	var zero V
	select {
	case res := <-ch:
		if res.Shared {
			s.hooks.Coalesced(r.key)
		}
		if res.Err != nil {
			return zero, res.Err
		}
		return as[V](res.Val), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// fill runs inside the flight, so at most one fill per key is active.
func (r *resource[V]) fill(ctx context.Context) (any, error) {
	s := r.s
	s.setInFlight(r.key, true)
	defer s.setInFlight(r.key, false)

	// A flight that settled between our fast-path check and DoChan may
	// already have refreshed the entry.
	sig := r.signature(ctx)
	prev := s.get(r.key)
	if r.fresh(prev, sig, s.now()) {
		return prev.value, nil
	}
	s.hooks.Miss(r.key, r.reason(prev, sig))

	v, err := r.produce(ctx)
	if err == nil {
		at := s.now()
		s.put(r.key, &entry{value: v, fetchedAt: at, sig: sig})
		r.mirror(ctx, v, at, sig)
		return v, nil
	}

	s.hooks.ProducerError(r.key, err)
	if r.staleIfError {
		if e, ok := r.stale(ctx, err); ok {
			return e.value, nil
		}
	}

	s.Forget(r.key)
	s.log.Warn("producer failed", Fields{"key": r.key, "err": err})
	return nil, &FetchError{Key: r.key, Err: err}
}

// stale returns the previous value when it is within the staleness ceiling.
// The in-memory entry is preferred; the mirror is consulted only when the
// process holds nothing. Timestamp and signature are left untouched so the
// next call retries the producer.
func (r *resource[V]) stale(ctx context.Context, cause error) (*entry, bool) {
	s := r.s
	now := s.now()

	if e := s.get(r.key); e != nil {
		age := now.Sub(e.fetchedAt)
		if !r.withinCeiling(age) {
			s.log.Warn("stale value past ceiling", Fields{"key": r.key, "age": age.String()})
			return nil, false
		}
		s.hooks.StaleServed(r.key, age, false, cause)
		s.log.Warn("serving stale value", Fields{"key": r.key, "age": age.String(), "err": cause})
		return e, true
	}

	e, ok := r.fromMirror(ctx)
	if !ok {
		return nil, false
	}
	age := now.Sub(e.fetchedAt)
	if !r.withinCeiling(age) {
		return nil, false
	}
	s.put(r.key, e)
	s.hooks.StaleServed(r.key, age, true, cause)
	s.log.Warn("serving mirrored stale value", Fields{"key": r.key, "age": age.String(), "err": cause})
	return e, true
}

func (r *resource[V]) signature(ctx context.Context) string {
	sig, err := r.s.bus.signature(ctx, r.watch)
	if err != nil {
		r.s.hooks.SignatureError(r.key, err)
		r.s.log.Warn("watch key snapshot failed", Fields{"key": r.key, "err": err})
		return sigUnavailable
	}
	return sig
}

func (r *resource[V]) fresh(e *entry, sig string, now time.Time) bool {
	return e != nil &&
		sig != sigUnavailable &&
		e.sig == sig &&
		now.Sub(e.fetchedAt) < r.ttl
}

func (r *resource[V]) reason(e *entry, sig string) MissReason {
	switch {
	case e == nil:
		return MissCold
	case e.sig != sig:
		return MissInvalidated
	default:
		return MissExpired
	}
}

func (r *resource[V]) withinCeiling(age time.Duration) bool {
	return r.maxStale < 0 || age <= r.maxStale
}

func (r *resource[V]) mirror(ctx context.Context, v V, at time.Time, sig string) {
	s := r.s
	if s.provider == nil || r.codec == nil {
		return
	}
	payload, err := r.codec.Encode(v)
	if err != nil {
		s.mirrorFailed(r.key, "encode", err)
		return
	}
	frame := wire.EncodeSnapshot(wire.Snapshot{Signature: sig, FetchedAt: at, Payload: payload})

	ttl := r.maxStale
	if ttl < 0 {
		ttl = 0
	}
	ok, err := s.provider.Set(ctx, util.MirrorKey(s.ns, r.key), frame, ttl)
	if err != nil {
		s.mirrorFailed(r.key, "set", err)
		return
	}
	if !ok {
		s.log.Debug("mirror write rejected by provider", Fields{"key": r.key, "bytes": len(frame)})
	}
}

func (r *resource[V]) fromMirror(ctx context.Context) (*entry, bool) {
	s := r.s
	if s.provider == nil || r.codec == nil {
		return nil, false
	}
	k := util.MirrorKey(s.ns, r.key)
	raw, ok, err := s.provider.Get(ctx, k)
	if err != nil {
		s.mirrorFailed(r.key, "get", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	snap, err := wire.DecodeSnapshot(raw)
	if err != nil {
		_ = s.provider.Del(ctx, k) // self-heal corrupt
		s.mirrorFailed(r.key, "decode", err)
		return nil, false
	}
	v, err := r.codec.Decode(snap.Payload)
	if err != nil {
		_ = s.provider.Del(ctx, k)
		s.mirrorFailed(r.key, "decode", err)
		return nil, false
	}
	return &entry{value: v, fetchedAt: snap.FetchedAt, sig: snap.Signature}, true
}

func (s *Service) mirrorFailed(key, op string, err error) {
	s.hooks.MirrorError(key, op, err)
	s.log.Debug("mirror "+op+" failed", Fields{"key": key, "err": err})
}

func (s *Service) claim(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.claimed[key]; dup {
		panic("sheetcache: key " + key + " wrapped twice")
	}
	s.claimed[key] = struct{}{}
}

func (s *Service) get(key string) *entry {
	s.mu.RLock()
	e := s.entries[key]
	s.mu.RUnlock()
	return e
}

func (s *Service) put(key string, e *entry) {
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

func (s *Service) setInFlight(key string, on bool) {
	s.mu.Lock()
	if on {
		s.inflight[key] = struct{}{}
	} else {
		delete(s.inflight, key)
	}
	s.mu.Unlock()
}

// as converts a stored value back to V; a nil interface yields the zero V.
func as[V any](v any) V {
	t, _ := v.(V)
	return t
}
