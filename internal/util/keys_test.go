package util

import (
	"reflect"
	"testing"
)

func TestNormalizeKeys(t *testing.T) {
	got := NormalizeKeys([]string{"b", " a ", "", "b", "c", "a"})
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if NormalizeKeys(nil) != nil {
		t.Fatalf("nil input should stay nil")
	}
}

func TestSignature(t *testing.T) {
	if s := Signature(nil, nil); s != "" {
		t.Fatalf("empty keys => empty signature, got %q", s)
	}
	s := Signature([]string{"sheets:books", "sheets:orders"}, map[string]uint64{"sheets:orders": 3})
	if s != "sheets:books=0;sheets:orders=3" {
		t.Fatalf("got %q", s)
	}
}
