package wire

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func mustDecode(t *testing.T, b []byte) Snapshot {
	t.Helper()
	s, err := DecodeSnapshot(b)
	if err != nil {
		t.Fatalf("DecodeSnapshot error: %v", err)
	}
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	at := time.Date(2024, 9, 1, 8, 30, 0, 123, time.UTC)
	cases := []Snapshot{
		{Signature: "", FetchedAt: at, Payload: nil},
		{Signature: "sheets:books=2;sheets:orders=7", FetchedAt: at, Payload: []byte("hello")},
		{Signature: strings.Repeat("k", 0xFFFF), FetchedAt: at, Payload: []byte{0, 1, 2}},
	}
	for _, tc := range cases {
		got := mustDecode(t, EncodeSnapshot(tc))
		if got.Signature != tc.Signature {
			t.Fatalf("signature mismatch: got %d bytes want %d", len(got.Signature), len(tc.Signature))
		}
		if !got.FetchedAt.Equal(tc.FetchedAt) {
			t.Fatalf("fetchedAt: got %v want %v", got.FetchedAt, tc.FetchedAt)
		}
		if !bytes.Equal(got.Payload, tc.Payload) {
			t.Fatalf("payload: got %x want %x", got.Payload, tc.Payload)
		}
	}
}

func TestSnapshotRejectsCorruption(t *testing.T) {
	enc := EncodeSnapshot(Snapshot{Signature: "a=1", FetchedAt: time.Unix(10, 0), Payload: []byte("abc")})

	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'

	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1

	trailing := append(append([]byte(nil), enc...), 0xDE, 0xAD)

	for name, b := range map[string][]byte{
		"magic":     badMagic,
		"version":   badVer,
		"trailing":  trailing,
		"truncated": enc[:len(enc)-1],
		"header":    enc[:6],
		"empty":     nil,
	} {
		if _, err := DecodeSnapshot(b); err != ErrCorrupt {
			t.Errorf("%s: expected ErrCorrupt, got %v", name, err)
		}
	}
}

func TestSnapshotPanicsOnOversizedSignature(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	EncodeSnapshot(Snapshot{Signature: strings.Repeat("x", 0x10000)})
}
