package sheetcache

import "time"

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// Fresh value served without calling the producer.
	Hit(key string)
	// Producer is about to run.
	Miss(key string, reason MissReason)
	// A flight result was delivered to more than one caller.
	Coalesced(key string)
	// Producer failed and a previous value of the given age was served.
	// fromMirror is true when it came from the Provider.
	StaleServed(key string, age time.Duration, fromMirror bool, cause error)
	// Producer failed; called whether or not a stale value rescues it.
	ProducerError(key string, err error)

	// Bus events.
	Bumped(watchKey string, epoch uint64)
	BumpError(watchKey string, err error)
	// Watch-key epochs could not be read; the entry is treated as invalidated.
	SignatureError(key string, err error)

	// Mirror failure. op ∈ {"get", "set", "decode", "encode"}
	MirrorError(key, op string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                                     {}
func (NopHooks) Miss(string, MissReason)                        {}
func (NopHooks) Coalesced(string)                               {}
func (NopHooks) StaleServed(string, time.Duration, bool, error) {}
func (NopHooks) ProducerError(string, error)                    {}
func (NopHooks) Bumped(string, uint64)                          {}
func (NopHooks) BumpError(string, error)                        {}
func (NopHooks) SignatureError(string, error)                   {}
func (NopHooks) MirrorError(string, string, error)              {}

// TeeHooks fans every event out to hs in order. Nil entries are skipped.
func TeeHooks(hs ...Hooks) Hooks {
	var out tee
	for _, h := range hs {
		if h != nil {
			out = append(out, h)
		}
	}
	switch len(out) {
	case 0:
		return NopHooks{}
	case 1:
		return out[0]
	}
	return out
}

type tee []Hooks

func (t tee) Hit(k string) {
	for _, h := range t {
		h.Hit(k)
	}
}

func (t tee) Miss(k string, r MissReason) {
	for _, h := range t {
		h.Miss(k, r)
	}
}

func (t tee) Coalesced(k string) {
	for _, h := range t {
		h.Coalesced(k)
	}
}

func (t tee) StaleServed(k string, age time.Duration, fromMirror bool, cause error) {
	for _, h := range t {
		h.StaleServed(k, age, fromMirror, cause)
	}
}

func (t tee) ProducerError(k string, err error) {
	for _, h := range t {
		h.ProducerError(k, err)
	}
}

func (t tee) Bumped(k string, e uint64) {
	for _, h := range t {
		h.Bumped(k, e)
	}
}

func (t tee) BumpError(k string, err error) {
	for _, h := range t {
		h.BumpError(k, err)
	}
}

func (t tee) SignatureError(k string, err error) {
	for _, h := range t {
		h.SignatureError(k, err)
	}
}

func (t tee) MirrorError(k, op string, err error) {
	for _, h := range t {
		h.MirrorError(k, op, err)
	}
}
