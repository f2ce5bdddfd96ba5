// Package promhooks exports cache events as Prometheus metrics.
package promhooks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/sheetcache"
)

// Hooks counts cache events per cache key and per watch key.
type Hooks struct {
	hits        *prometheus.CounterVec
	misses      *prometheus.CounterVec
	coalesced   *prometheus.CounterVec
	stale       *prometheus.CounterVec
	staleAge    *prometheus.HistogramVec
	producerErr *prometheus.CounterVec
	bumps       *prometheus.CounterVec
	bumpErr     *prometheus.CounterVec
	sigErr      *prometheus.CounterVec
	mirrorErr   *prometheus.CounterVec
}

var _ sheetcache.Hooks = (*Hooks)(nil)

// New creates the collectors and registers them with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace string) (*Hooks, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheetcache",
			Name:      name,
			Help:      help,
		}, labels)
	}

	h := &Hooks{
		hits:        counter("hits_total", "Fresh values served from memory.", "key"),
		misses:      counter("misses_total", "Producer invocations by reason.", "key", "reason"),
		coalesced:   counter("coalesced_total", "Callers served by a shared flight.", "key"),
		stale:       counter("stale_served_total", "Stale values served after a producer error.", "key", "source"),
		producerErr: counter("producer_errors_total", "Producer failures.", "key"),
		bumps:       counter("bumps_total", "Watch key epoch increments.", "watch_key"),
		bumpErr:     counter("bump_errors_total", "Failed watch key increments.", "watch_key"),
		sigErr:      counter("signature_errors_total", "Failed watch key snapshots.", "key"),
		mirrorErr:   counter("mirror_errors_total", "Snapshot mirror failures.", "key", "op"),
		staleAge: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sheetcache",
			Name:      "stale_age_seconds",
			Help:      "Age of stale values when served.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"key"}),
	}

	for _, c := range []prometheus.Collector{
		h.hits, h.misses, h.coalesced, h.stale, h.staleAge,
		h.producerErr, h.bumps, h.bumpErr, h.sigErr, h.mirrorErr,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) Hit(key string)       { h.hits.WithLabelValues(key).Inc() }
func (h *Hooks) Coalesced(key string) { h.coalesced.WithLabelValues(key).Inc() }

func (h *Hooks) Miss(key string, reason sheetcache.MissReason) {
	h.misses.WithLabelValues(key, string(reason)).Inc()
}

func (h *Hooks) StaleServed(key string, age time.Duration, fromMirror bool, _ error) {
	source := "memory"
	if fromMirror {
		source = "mirror"
	}
	h.stale.WithLabelValues(key, source).Inc()
	h.staleAge.WithLabelValues(key).Observe(age.Seconds())
}

func (h *Hooks) ProducerError(key string, _ error) { h.producerErr.WithLabelValues(key).Inc() }
func (h *Hooks) Bumped(watchKey string, _ uint64)  { h.bumps.WithLabelValues(watchKey).Inc() }
func (h *Hooks) BumpError(watchKey string, _ error) {
	h.bumpErr.WithLabelValues(watchKey).Inc()
}
func (h *Hooks) SignatureError(key string, _ error) { h.sigErr.WithLabelValues(key).Inc() }
func (h *Hooks) MirrorError(key, op string, _ error) {
	h.mirrorErr.WithLabelValues(key, op).Inc()
}
