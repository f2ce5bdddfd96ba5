package codec

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/unkn0wn-root/sheetcache/grid"
)

type item struct {
	ISBN  string    `json:"isbn" msgpack:"isbn" cbor:"isbn"`
	Name  string    `json:"name" msgpack:"name" cbor:"name"`
	Seats []int     `json:"seats" msgpack:"seats" cbor:"seats"`
	At    time.Time `json:"at" msgpack:"at" cbor:"at"`
}

func TestStructCodecs(t *testing.T) {
	in := []item{{ISBN: "978-1", Name: "國文", Seats: []int{1, 2}, At: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)}}
	codecs := map[string]Codec[[]item]{
		"json":    JSON[[]item]{},
		"msgpack": Msgpack[[]item]{},
		"cbor":    MustCBOR[[]item](true),
	}
	for name, c := range codecs {
		b, err := c.Encode(in)
		if err != nil {
			t.Fatalf("%s encode: %v", name, err)
		}
		out, err := c.Decode(b)
		if err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if len(out) != 1 || out[0].ISBN != in[0].ISBN || out[0].Name != in[0].Name ||
			!reflect.DeepEqual(out[0].Seats, in[0].Seats) || !out[0].At.Equal(in[0].At) {
			t.Fatalf("%s: got %+v", name, out)
		}
	}
}

func TestMsgpackFallsBackToJSONTags(t *testing.T) {
	type book struct {
		ISBN string `json:"isbn"`
		Qty  int    `json:"qty"`
	}
	b, err := Msgpack[book]{}.Encode(book{ISBN: "111", Qty: 3})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var raw map[string]any
	if err := msgpack.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["isbn"] != "111" {
		t.Fatalf("expected json tag names, got %v", raw)
	}
}

func TestCBORRejectsDuplicateKeys(t *testing.T) {
	c := MustCBOR[map[string]int](false)
	// {"a": 1, "a": 2}
	dup := []byte{0xa2, 0x61, 'a', 0x01, 0x61, 'a', 0x02}
	if _, err := c.Decode(dup); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestCBORDeterministicIsStable(t *testing.T) {
	c := MustCBOR[map[string]int](true)
	a, _ := c.Encode(map[string]int{"b": 2, "a": 1, "c": 3})
	b, _ := c.Encode(map[string]int{"c": 3, "a": 1, "b": 2})
	if string(a) != string(b) {
		t.Fatalf("deterministic CBOR differs")
	}
}

func TestGridProto(t *testing.T) {
	in := grid.Grid{{"預購中", "", "", "已訂購"}, {}, {"O", "", "O"}}
	b, err := GridProto{}.Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := GridProto{}.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("got %q want %q", out, in)
	}
	if _, err := (GridProto{}).Decode([]byte{0xff, 0xff}); err == nil {
		t.Fatalf("expected decode error on garbage")
	}
}

func TestLimitCodec(t *testing.T) {
	c := LimitCodec[string]{Inner: String{}, MaxDecode: 4}
	if _, err := c.Decode([]byte("12345")); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("expected size error, got %v", err)
	}
	if v, err := c.Decode([]byte("1234")); err != nil || v != "1234" {
		t.Fatalf("v=%q err=%v", v, err)
	}
	unlimited := LimitCodec[[]byte]{Inner: Bytes{}}
	if v, err := unlimited.Decode(make([]byte, 1<<16)); err != nil || len(v) != 1<<16 {
		t.Fatalf("unlimited decode failed: %v", err)
	}
}
