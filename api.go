package sheetcache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/sheetcache/codec"
	gen "github.com/unkn0wn-root/sheetcache/genstore"
	pr "github.com/unkn0wn-root/sheetcache/provider"
)

const (
	defaultTTL      = 10 * time.Minute
	defaultMaxStale = 6 * time.Hour
)

// coalesce picks def for zero-valued options.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// Producer fetches a fresh value. It owns its own timeout.
type Producer[V any] func(ctx context.Context) (V, error)

// Loader is what Wrap returns: call it wherever the value is needed.
type Loader[V any] func(ctx context.Context) (V, error)

// ServiceOptions configure a Service. The zero value is usable: in-process
// epochs, no mirror, no logging.
type ServiceOptions struct {
	Namespace  string        // prefix for mirror keys; "" => "default"
	GenStore   gen.GenStore  // nil => LocalGenStore (in-process)
	Provider   pr.Provider   // optional snapshot mirror
	Logger     Logger        // nil => NopLogger
	Hooks      Hooks         // nil => NopHooks
	DefaultTTL time.Duration // entries with TTL 0; 0 => 10m
	MaxStale   time.Duration // stale-if-error ceiling; 0 => 6h, <0 => unbounded
	Clock      func() time.Time
	Disabled   bool // every Loader calls its producer directly
}

// Options tune one wrapped resource.
type Options[V any] struct {
	TTL          time.Duration // 0 => ServiceOptions.DefaultTTL
	StaleIfError bool
	WatchKeys    []string
	MaxStale     time.Duration // 0 => ServiceOptions.MaxStale, <0 => unbounded
	// Codec enables the snapshot mirror for this resource when the service
	// has a Provider.
	Codec c.Codec[V]
}

// EntryInfo describes a cache entry without exposing its value.
type EntryInfo struct {
	Cached    bool
	FetchedAt time.Time
	Signature string
	InFlight  bool
}

// MissReason explains why a Loader went to its producer.
type MissReason string

const (
	MissCold        MissReason = "cold"
	MissExpired     MissReason = "expired"
	MissInvalidated MissReason = "invalidated"
)
