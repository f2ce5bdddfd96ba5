// Package asynchook decouples hook delivery from the cache hot path.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{HitEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	svc, _ := sheetcache.New(sheetcache.ServiceOptions{Hooks: hooks})
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/sheetcache"
)

// Hooks forwards events to inner on worker goroutines. Events are dropped
// when the queue is full.
type Hooks struct {
	inner   sheetcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ sheetcache.Hooks = (*Hooks)(nil)

func New(inner sheetcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) Hit(k string)                       { h.try(func() { h.inner.Hit(k) }) }
func (h *Hooks) Coalesced(k string)                 { h.try(func() { h.inner.Coalesced(k) }) }
func (h *Hooks) ProducerError(k string, err error)  { h.try(func() { h.inner.ProducerError(k, err) }) }
func (h *Hooks) Bumped(k string, e uint64)          { h.try(func() { h.inner.Bumped(k, e) }) }
func (h *Hooks) BumpError(k string, err error)      { h.try(func() { h.inner.BumpError(k, err) }) }
func (h *Hooks) SignatureError(k string, err error) { h.try(func() { h.inner.SignatureError(k, err) }) }
func (h *Hooks) Miss(k string, r sheetcache.MissReason) {
	h.try(func() { h.inner.Miss(k, r) })
}
func (h *Hooks) StaleServed(k string, age time.Duration, fromMirror bool, cause error) {
	h.try(func() { h.inner.StaleServed(k, age, fromMirror, cause) })
}
func (h *Hooks) MirrorError(k, op string, err error) {
	h.try(func() { h.inner.MirrorError(k, op, err) })
}
