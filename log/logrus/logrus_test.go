package logrus

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/sheetcache"
)

func TestLogrusAdapter(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetLevel(logrus.DebugLevel)
	var l sheetcache.Logger = New(base)
	l.Debug("watch key bumped", sheetcache.Fields{"watchKey": "sheets:orders"})
	if !strings.Contains(buf.String(), `watchKey="sheets:orders"`) {
		t.Fatalf("output=%s", buf.String())
	}
}
