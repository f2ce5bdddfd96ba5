// Package sloghooks logs cache events through log/slog.
package sloghooks

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/sheetcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery  uint64
	MissEvery uint64
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
}

var _ sheetcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(key string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("sheetcache.hit", "key", key)
}

func (h *Hooks) Miss(key string, reason sheetcache.MissReason) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("sheetcache.miss", "key", key, "reason", string(reason))
}

func (h *Hooks) Coalesced(key string) {
	if h.l == nil {
		return
	}
	h.l.Debug("sheetcache.coalesced", "key", key)
}

func (h *Hooks) StaleServed(key string, age time.Duration, fromMirror bool, cause error) {
	if h.l == nil {
		return
	}
	h.l.Warn("sheetcache.stale_served",
		"key", key,
		"age", age,
		"from_mirror", fromMirror,
		"err", cause)
}

func (h *Hooks) ProducerError(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("sheetcache.producer_error", "key", key, "err", err)
}

func (h *Hooks) Bumped(watchKey string, epoch uint64) {
	if h.l == nil {
		return
	}
	h.l.Info("sheetcache.bumped", "watch_key", watchKey, "epoch", epoch)
}

func (h *Hooks) BumpError(watchKey string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("sheetcache.bump_error", "watch_key", watchKey, "err", err)
}

func (h *Hooks) SignatureError(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("sheetcache.signature_error", "key", key, "err", err)
}

func (h *Hooks) MirrorError(key, op string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("sheetcache.mirror_error", "key", key, "op", op, "err", err)
}
