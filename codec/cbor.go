package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// mirrorMaxElements caps arrays and maps decoded from a shared mirror. A
// roster or catalog is far below it.
const mirrorMaxElements = 1 << 16

// CBOR serializes with fxamacker/cbor. Struct fields fall back to their
// `json` tags. Construct with NewCBOR or MustCBOR; the zero value panics.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

// NewCBOR builds the codec. deterministic selects RFC 8949 core
// deterministic encoding (sorted map keys), which makes equal values encode
// to equal bytes. Decoding rejects duplicate map keys and oversized
// containers.
func NewCBOR[V any](deterministic bool) (CBOR[V], error) {
	eo := cbor.PreferredUnsortedEncOptions()
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	}
	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	dm, err := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: mirrorMaxElements,
		MaxMapPairs:      mirrorMaxElements,
	}.DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

// MustCBOR is NewCBOR for static options; it panics on error.
func MustCBOR[V any](deterministic bool) CBOR[V] {
	c, err := NewCBOR[V](deterministic)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.enc.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	err := c.dec.Unmarshal(b, &v)
	return v, err
}
