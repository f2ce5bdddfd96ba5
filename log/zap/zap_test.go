package zap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/sheetcache"
)

func TestZapAdapter(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	var l sheetcache.Logger = New(zap.New(core))
	l.Warn("producer failed", sheetcache.Fields{"key": "books", "err": errors.New("quota")})

	entries := logs.All()
	if len(entries) != 1 || entries[0].Message != "producer failed" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	ctx := entries[0].ContextMap()
	if ctx["key"] != "books" || ctx["err"] != "quota" {
		t.Fatalf("fields=%v", ctx)
	}
	New(nil).Info("nop", nil)
}
