// Package codec turns cached values into bytes for the snapshot mirror and
// back. Implementations must round-trip every value they encode; a value
// that decodes differently is served to readers as if it were fresh data.
package codec

type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
