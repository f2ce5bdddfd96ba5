package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("sheetcache: corrupt snapshot")
	magic4     = [...]byte{'S', 'H', 'C', 'S'}
)

// Snapshot is one mirrored cache fill.
type Snapshot struct {
	Signature string
	FetchedAt time.Time
	Payload   []byte
}

// EncodeSnapshot frames s as:
//
//	magic(4) | ver(1) | fetchedAt unix nanos(i64 be) | sigLen(u16 be) | sig | vlen(u32 be) | payload
func EncodeSnapshot(s Snapshot) []byte {
	if len(s.Signature) > 0xFFFF {
		panic("sheetcache: signature too long")
	}
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 8 + 2 + len(s.Signature) + 4 + len(s.Payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint64(u8[:], uint64(s.FetchedAt.UnixNano()))
	buf.Write(u8[:])

	binary.BigEndian.PutUint16(u2[:], uint16(len(s.Signature)))
	buf.Write(u2[:])
	buf.WriteString(s.Signature)

	binary.BigEndian.PutUint32(u4[:], uint32(len(s.Payload)))
	buf.Write(u4[:])
	buf.Write(s.Payload)
	return buf.Bytes()
}

// DecodeSnapshot is the inverse of EncodeSnapshot. Payload aliases b.
// Trailing bytes are rejected.
func DecodeSnapshot(b []byte) (Snapshot, error) {
	const hdr = 4 + 1 + 8 + 2
	if len(b) < hdr || !bytes.Equal(b[:4], magic4[:]) || b[4] != version {
		return Snapshot{}, ErrCorrupt
	}
	off := 5

	nanos := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	slen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if slen > len(b)-off {
		return Snapshot{}, ErrCorrupt
	}
	sig := string(b[off : off+slen])
	off += slen

	if off+4 > len(b) {
		return Snapshot{}, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off {
		return Snapshot{}, ErrCorrupt
	}

	return Snapshot{
		Signature: sig,
		FetchedAt: time.Unix(0, nanos),
		Payload:   b[off : off+vlen],
	}, nil
}
